package schedule

import (
	"context"

	"github.com/taskdog/taskdog/internal/domain/model"
)

// balancedWindowDays is the effective window for tasks without a deadline.
const balancedWindowDays = 14

// balancedStrategy spreads each task evenly across the workdays between
// the start date and its deadline, so no single day front-loads the work.
// Tasks that cannot be spread evenly fall through to the forward allocator.
type balancedStrategy struct{}

func (s *balancedStrategy) Name() Algorithm {
	return AlgorithmBalanced
}

func (s *balancedStrategy) Run(_ context.Context, tasks []*model.Task, grid Grid, params Params) Result {
	p := params.normalized()
	ordered, _ := orderByPriority(tasks)
	var res Result
	for _, t := range ordered {
		cand, reason := prepareForAllocation(t)
		if reason != "" {
			res.Failed = append(res.Failed, Failure{Task: t.Clone(), Reason: reason})
			continue
		}
		if spreadWithinWindow(cand, grid, p) {
			res.Scheduled = append(res.Scheduled, cand)
			continue
		}
		if reason := allocateForward(cand, grid, p); reason != "" {
			res.Failed = append(res.Failed, Failure{Task: cand, Reason: reason})
			continue
		}
		res.Scheduled = append(res.Scheduled, cand)
	}
	return res
}

// spreadWithinWindow books estimate/|workdays| hours on every workday of
// the task's window. It reports false, releasing anything it booked, when
// the even share cannot cover the estimate under MaxHoursPerDay or when
// some day in the window lacks the capacity for its share.
func spreadWithinWindow(t *model.Task, g Grid, p Params) bool {
	end, ok := p.deadlineDate(t)
	if !ok {
		end = p.StartDate.AddDays(balancedWindowDays)
	}
	days := p.allocatableBetween(p.StartDate, end)
	if len(days) == 0 {
		return false
	}
	share := *t.EstimatedDuration / float64(len(days))
	if share > p.MaxHoursPerDay {
		return false
	}
	alloc := make(model.HoursByDate, len(days))
	for _, d := range days {
		if g.Hours(d)+share > p.MaxHoursPerDay+hourEpsilon {
			g.Rollback(alloc)
			return false
		}
		alloc[d] = share
		g.Add(d, share)
	}
	p.setPlannedTimes(t, days[0], days[len(days)-1], alloc)
	return true
}
