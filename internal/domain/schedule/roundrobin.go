package schedule

import (
	"context"
	"log/slog"
	"math"

	"github.com/taskdog/taskdog/internal/domain/model"
)

// maxRoundRobinIterations bounds the day loop. The limit exists for
// pathological inputs (a grid booked solid for decades); hitting it fails
// every unfinished task rather than spinning.
const maxRoundRobinIterations = 10000

// roundRobinStrategy advances every task a little each day: the free
// capacity of a day is split equally among the tasks that still have hours
// left. All tasks make progress in parallel instead of completing one by
// one.
type roundRobinStrategy struct{}

type roundRobinState struct {
	task        *model.Task
	remaining   float64
	alloc       model.HoursByDate
	first, last model.Date
	deadline    model.Date
	hasDeadline bool
	done        bool
	failed      bool
}

func (st *roundRobinState) active() bool {
	return !st.done && !st.failed
}

func (s *roundRobinStrategy) Name() Algorithm {
	return AlgorithmRoundRobin
}

func (s *roundRobinStrategy) Run(_ context.Context, tasks []*model.Task, grid Grid, params Params) Result {
	p := params.normalized()
	var res Result

	var states []*roundRobinState
	ordered, _ := orderByPriority(tasks)
	for _, t := range ordered {
		cand, reason := prepareForAllocation(t)
		if reason != "" {
			res.Failed = append(res.Failed, Failure{Task: t.Clone(), Reason: reason})
			continue
		}
		st := &roundRobinState{
			task:      cand,
			remaining: *cand.EstimatedDuration,
			alloc:     make(model.HoursByDate),
		}
		st.deadline, st.hasDeadline = p.deadlineDate(cand)
		states = append(states, st)
	}

	active := len(states)
	cursor := p.StartDate
	for iter := 0; active > 0; iter++ {
		if iter >= maxRoundRobinIterations {
			p.Logger.Warn("round-robin day loop hit its iteration limit",
				slog.Int("limit", maxRoundRobinIterations),
				slog.Int("unfinished_tasks", active))
			for _, st := range states {
				if st.active() {
					grid.Rollback(st.alloc)
					st.failed = true
					res.Failed = append(res.Failed, Failure{Task: st.task, Reason: reasonIterationLimit})
				}
			}
			break
		}

		for _, st := range states {
			if st.active() && st.hasDeadline && cursor.After(st.deadline) {
				grid.Rollback(st.alloc)
				st.failed = true
				active--
				res.Failed = append(res.Failed, Failure{Task: st.task, Reason: reasonDeadline})
			}
		}
		if active == 0 {
			break
		}
		if !p.allocatable(cursor) {
			cursor = cursor.AddDays(1)
			continue
		}

		// The share is fixed at the start of the day; tasks finishing
		// mid-day do not free capacity for the others until tomorrow.
		share := p.availableHours(grid, cursor) / float64(active)
		if share > hourEpsilon {
			for _, st := range states {
				if !st.active() {
					continue
				}
				take := math.Min(share, st.remaining)
				st.alloc[cursor] += take
				grid.Add(cursor, take)
				if st.first.IsZero() {
					st.first = cursor
				}
				st.last = cursor
				st.remaining -= take
				if st.remaining <= hourEpsilon {
					st.done = true
					active--
				}
			}
		}
		cursor = cursor.AddDays(1)
	}

	for _, st := range states {
		if st.done {
			p.setPlannedTimes(st.task, st.first, st.last, st.alloc)
			res.Scheduled = append(res.Scheduled, st.task)
		}
	}
	return res
}
