package schedule

import (
	"context"
	"math"

	"github.com/taskdog/taskdog/internal/domain/model"
)

// Failure reasons surfaced in Result.Failed. The dependency cycle reason is
// part of the API contract; clients match on it.
const (
	reasonNoEstimate      = "no estimated duration"
	reasonFixed           = "fixed tasks are not rescheduled"
	reasonDeadline        = "cannot be completed before the deadline"
	reasonHorizon         = "no capacity within the scheduling horizon"
	reasonBeforeStart     = "does not fit between the start date and the deadline"
	reasonDependencyCycle = "dependency cycle"
	reasonIterationLimit  = "day iteration limit reached"
)

// prepareForAllocation clones a task and clears the fields the allocator
// will rewrite. Fixed tasks and tasks without an estimate are not
// schedulable; the returned reason says why.
func prepareForAllocation(t *model.Task) (*model.Task, string) {
	if t.IsFixed {
		return nil, reasonFixed
	}
	if t.EstimatedDuration == nil || *t.EstimatedDuration <= 0 {
		return nil, reasonNoEstimate
	}
	c := t.Clone()
	c.PlannedStart = nil
	c.PlannedEnd = nil
	c.DailyAllocations = nil
	return c, ""
}

// setPlannedTimes stamps the planned window implied by an allocation: the
// first booked day at StartHour through the last booked day at EndHour.
func (p Params) setPlannedTimes(t *model.Task, first, last model.Date, alloc model.HoursByDate) {
	start := first.At(p.StartHour, p.Location)
	end := last.At(p.EndHour, p.Location)
	t.PlannedStart = &start
	t.PlannedEnd = &end
	t.DailyAllocations = alloc
}

// allocateForward walks day by day from the start date, booking as many
// hours as each day has free until the estimate is covered. On a missed
// deadline or an exhausted horizon it releases everything it booked and
// returns the failure reason, leaving the grid as it found it.
func allocateForward(t *model.Task, g Grid, p Params) string {
	remaining := *t.EstimatedDuration
	alloc := make(model.HoursByDate)
	var first, last model.Date
	deadline, hasDeadline := p.deadlineDate(t)
	cursor := p.StartDate
	// A sub-epsilon estimate still has to land on a real day, so the loop
	// also runs until the first booking.
	for day := 0; remaining > hourEpsilon || first.IsZero(); day++ {
		if hasDeadline && cursor.After(deadline) {
			g.Rollback(alloc)
			return reasonDeadline
		}
		if !hasDeadline && day >= p.HorizonDays {
			g.Rollback(alloc)
			return reasonHorizon
		}
		if p.allocatable(cursor) {
			if avail := p.availableHours(g, cursor); avail > hourEpsilon {
				take := math.Min(remaining, avail)
				alloc[cursor] += take
				g.Add(cursor, take)
				if first.IsZero() {
					first = cursor
				}
				last = cursor
				remaining -= take
			}
		}
		cursor = cursor.AddDays(1)
	}
	p.setPlannedTimes(t, first, last, alloc)
	return ""
}

// orderFunc sorts tasks into allocation order. The second return value
// lists tasks that cannot be ordered at all (dependency cycles); they fail
// without touching the grid.
type orderFunc func(tasks []*model.Task) (ordered, unorderable []*model.Task)

// runForward is the engine shared by the greedy family and, through
// permutation orderings, by the meta-heuristics.
func runForward(tasks []*model.Task, g Grid, p Params, order orderFunc) Result {
	var res Result
	ordered, unorderable := order(tasks)
	for _, t := range unorderable {
		res.Failed = append(res.Failed, Failure{Task: t.Clone(), Reason: reasonDependencyCycle})
	}
	for _, t := range ordered {
		cand, reason := prepareForAllocation(t)
		if reason != "" {
			res.Failed = append(res.Failed, Failure{Task: t.Clone(), Reason: reason})
			continue
		}
		if reason := allocateForward(cand, g, p); reason != "" {
			res.Failed = append(res.Failed, Failure{Task: cand, Reason: reason})
			continue
		}
		res.Scheduled = append(res.Scheduled, cand)
	}
	return res
}

// forwardStrategy pairs the forward engine with an ordering. Greedy,
// PriorityFirst, EarliestDeadline and DependencyAware are all instances of
// it.
type forwardStrategy struct {
	name  Algorithm
	order orderFunc
}

func (s *forwardStrategy) Name() Algorithm {
	return s.name
}

func (s *forwardStrategy) Run(_ context.Context, tasks []*model.Task, grid Grid, params Params) Result {
	return runForward(tasks, grid, params.normalized(), s.order)
}
