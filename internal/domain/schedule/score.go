package schedule

import (
	"github.com/taskdog/taskdog/internal/domain/model"
)

// score ranks one run outcome for the meta-heuristic search. Comparison is
// lexicographic over the fields in declaration order: fewer failed tasks
// beats everything, then fewer days booked past capacity, then steadier
// slack before deadlines, then a tighter overall plan.
type score struct {
	failures   int
	overloaded int
	slackVar   float64
	span       int
}

func (s score) better(o score) bool {
	if s.failures != o.failures {
		return s.failures < o.failures
	}
	if s.overloaded != o.overloaded {
		return s.overloaded < o.overloaded
	}
	if s.slackVar != o.slackVar {
		return s.slackVar < o.slackVar
	}
	return s.span < o.span
}

// evaluate scores a finished run against the grid it produced.
func evaluate(res Result, g Grid, p Params) score {
	s := score{failures: len(res.Failed)}
	for _, hours := range g {
		if hours > p.MaxHoursPerDay+hourEpsilon {
			s.overloaded++
		}
	}

	var slacks []float64
	var earliest, latest model.Date
	for _, t := range res.Scheduled {
		var taskLast model.Date
		for d := range t.DailyAllocations {
			if earliest.IsZero() || d.Before(earliest) {
				earliest = d
			}
			if d.After(latest) {
				latest = d
			}
			if d.After(taskLast) {
				taskLast = d
			}
		}
		if deadline, ok := p.deadlineDate(t); ok && !taskLast.IsZero() {
			slacks = append(slacks, float64(taskLast.DaysUntil(deadline)))
		}
	}
	s.slackVar = variance(slacks)
	if !earliest.IsZero() {
		s.span = earliest.DaysUntil(latest) + 1
	}
	return s
}

func variance(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))
	var sq float64
	for _, x := range xs {
		sq += (x - mean) * (x - mean)
	}
	return sq / float64(len(xs))
}
