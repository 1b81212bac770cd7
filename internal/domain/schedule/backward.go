package schedule

import (
	"context"
	"math"
	"sort"

	"github.com/taskdog/taskdog/internal/domain/model"
)

// backwardWindowDays is the effective deadline offset for tasks without
// one.
const backwardWindowDays = 7

// backwardStrategy allocates from each task's deadline towards the start
// date, producing just-in-time plans that keep the near term free.
type backwardStrategy struct{}

func (s *backwardStrategy) Name() Algorithm {
	return AlgorithmBackward
}

func (s *backwardStrategy) Run(_ context.Context, tasks []*model.Task, grid Grid, params Params) Result {
	p := params.normalized()

	// Latest deadline first, so the work furthest out is pinned to its own
	// deadline before nearer tasks compete for the days in between.
	ordered := append([]*model.Task(nil), tasks...)
	sort.SliceStable(ordered, func(i, j int) bool {
		di, dj := s.effectiveDeadline(ordered[i], p), s.effectiveDeadline(ordered[j], p)
		if di != dj {
			return di.After(dj)
		}
		return ordered[i].ID < ordered[j].ID
	})

	var res Result
	for _, t := range ordered {
		cand, reason := prepareForAllocation(t)
		if reason != "" {
			res.Failed = append(res.Failed, Failure{Task: t.Clone(), Reason: reason})
			continue
		}
		if reason := s.allocateBackward(cand, grid, p); reason != "" {
			res.Failed = append(res.Failed, Failure{Task: cand, Reason: reason})
			continue
		}
		res.Scheduled = append(res.Scheduled, cand)
	}
	return res
}

func (s *backwardStrategy) effectiveDeadline(t *model.Task, p Params) model.Date {
	if d, ok := p.deadlineDate(t); ok {
		return d
	}
	return p.StartDate.AddDays(backwardWindowDays)
}

// allocateBackward mirrors allocateForward with a decrementing cursor. It
// fails, releasing its bookings, when the cursor passes before the start
// date with hours still unplaced.
func (s *backwardStrategy) allocateBackward(t *model.Task, g Grid, p Params) string {
	remaining := *t.EstimatedDuration
	alloc := make(model.HoursByDate)
	var first, last model.Date
	cursor := s.effectiveDeadline(t, p)
	// A sub-epsilon estimate still has to land on a real day, so the loop
	// also runs until the first booking.
	for remaining > hourEpsilon || last.IsZero() {
		if cursor.Before(p.StartDate) {
			g.Rollback(alloc)
			return reasonBeforeStart
		}
		if p.allocatable(cursor) {
			if avail := p.availableHours(g, cursor); avail > hourEpsilon {
				take := math.Min(remaining, avail)
				alloc[cursor] += take
				g.Add(cursor, take)
				if last.IsZero() {
					last = cursor
				}
				first = cursor
				remaining -= take
			}
		}
		cursor = cursor.AddDays(-1)
	}
	p.setPlannedTimes(t, first, last, alloc)
	return ""
}
