package schedule

import "github.com/taskdog/taskdog/internal/domain/model"

// Failure records a task the strategy could not place and why. Failures are
// data, not errors: the engine never aborts a run because one task does not
// fit.
type Failure struct {
	Task   *model.Task
	Reason string
}

// Result is the outcome of one strategy run. Scheduled tasks are clones of
// the input tasks with daily_allocations and planned times filled in; the
// caller decides what to persist.
type Result struct {
	Scheduled []*model.Task
	Failed    []Failure
}

// Counts returns the scheduled and failed totals.
func (r Result) Counts() (scheduled, failed int) {
	return len(r.Scheduled), len(r.Failed)
}
