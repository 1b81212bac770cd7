package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJMESPathEvaluator_Validate(t *testing.T) {
	t.Parallel()
	evaluator := jmespathLibEvaluator{}

	assert.NoError(t, evaluator.Validate(""))
	assert.NoError(t, evaluator.Validate("   "))
	assert.NoError(t, evaluator.Validate(`type == 'task_created'`))
	assert.Error(t, evaluator.Validate("task.["))
}

func TestEventMatchesFilter_EmptyMatchesEverything(t *testing.T) {
	t.Parallel()

	match, err := eventMatchesFilter(jmespathLibEvaluator{}, "  ", map[string]any{"type": "task_created"})

	require.NoError(t, err)
	assert.True(t, match)
}

func TestEventMatchesFilter_Truthiness(t *testing.T) {
	t.Parallel()

	envelope := map[string]any{
		"type": "task_status_changed",
		"task": map[string]any{
			"id":       float64(7),
			"name":     "write release notes",
			"status":   "in_progress",
			"priority": float64(0),
			"tags":     []any{"docs"},
		},
		"old_status": "pending",
		"notes":      "",
		"deadline":   nil,
		"labels":     []any{},
		"extra":      map[string]any{},
	}

	tests := []struct {
		name  string
		expr  string
		match bool
	}{
		{name: "equality hit", expr: `type == 'task_status_changed'`, match: true},
		{name: "equality miss", expr: `type == 'task_deleted'`, match: false},
		{name: "missing key is null", expr: "no_such_key", match: false},
		{name: "null value", expr: "deadline", match: false},
		{name: "empty string", expr: "notes", match: false},
		{name: "empty array", expr: "labels", match: false},
		{name: "empty object", expr: "extra", match: false},
		{name: "non-empty string", expr: "task.name", match: true},
		{name: "non-empty array", expr: "task.tags", match: true},
		{name: "zero number is truthy", expr: "task.priority", match: true},
		{name: "boolean expression", expr: `contains(task.tags, 'docs')`, match: true},
		{name: "nested comparison", expr: `task.status == 'in_progress' && old_status == 'pending'`, match: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			match, err := eventMatchesFilter(jmespathLibEvaluator{}, tc.expr, envelope)

			require.NoError(t, err)
			assert.Equal(t, tc.match, match)
		})
	}
}

func TestEventMatchesFilter_EvaluationError(t *testing.T) {
	t.Parallel()

	evaluator := errorEvaluator{}
	match, err := eventMatchesFilter(evaluator, "type", map[string]any{})

	require.Error(t, err)
	assert.False(t, match)
}

type errorEvaluator struct{}

func (errorEvaluator) Validate(string) error { return nil }

func (errorEvaluator) Evaluate(string, any) (any, error) {
	return nil, assert.AnError
}
