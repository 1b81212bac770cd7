package metrics

import (
	"time"

	obserrors "github.com/taskdog/taskdog/internal/observability/errors"
	"github.com/taskdog/taskdog/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultNoop    = "noop"
)

// OptimizeMetric captures details about one schedule optimization run for
// metric emission.
type OptimizeMetric struct {
	Algorithm string
	Result    string
	Scheduled int
	Failed    int
	Duration  time.Duration
	Err       error
}

// EmitOptimizeRun emits standardised optimization run metrics.
func EmitOptimizeRun(sink statsd.Sink, in OptimizeMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"algorithm": in.Algorithm,
		"result":    in.Result,
	}

	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("optimize.runs", 1, tags)

	if in.Result == ResultSuccess {
		sink.Count("optimize.scheduled_tasks", int64(in.Scheduled), CloneTags(tags))
		sink.Count("optimize.unplaced_tasks", int64(in.Failed), CloneTags(tags))
	}

	if in.Duration > 0 {
		sink.Timing("optimize.duration", in.Duration, CloneTags(tags))
	}
}

// CloneTags creates a shallow copy of a tag map, filtering out empty keys.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
