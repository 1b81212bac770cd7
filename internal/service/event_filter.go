package service

import (
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"
)

// JMESPathEvaluator abstracts JMESPath operations for testability.
type JMESPathEvaluator interface {
	Validate(expr string) error
	Evaluate(expr string, data any) (any, error)
}

// jmespathLibEvaluator implements JMESPathEvaluator using go-jmespath.
type jmespathLibEvaluator struct{}

func (j jmespathLibEvaluator) Validate(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return nil
	}
	_, err := jmespath.Compile(expr)
	return err
}

func (j jmespathLibEvaluator) Evaluate(expr string, data any) (any, error) {
	return jmespath.Search(expr, data)
}

// eventMatchesFilter evaluates a sink's filter expression against the event
// envelope. An empty filter matches every event; otherwise the result must
// be truthy under JMESPath's rules, where null, false, empty strings, empty
// arrays and empty objects are all false.
func eventMatchesFilter(evaluator JMESPathEvaluator, expr string, envelope map[string]any) (bool, error) {
	if strings.TrimSpace(expr) == "" {
		return true, nil
	}
	result, err := evaluator.Evaluate(expr, envelope)
	if err != nil {
		return false, err
	}
	return jmespathTruthy(result), nil
}

func jmespathTruthy(v any) bool {
	switch value := v.(type) {
	case nil:
		return false
	case bool:
		return value
	case string:
		return value != ""
	case []any:
		return len(value) > 0
	case map[string]any:
		return len(value) > 0
	default:
		// Numbers are always true, zero included.
		return true
	}
}
