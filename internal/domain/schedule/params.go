package schedule

import (
	"log/slog"
	"time"

	"github.com/taskdog/taskdog/internal/domain/model"
)

// Defaults applied by Params.normalized for unset fields.
const (
	DefaultMaxHoursPerDay = 6.0
	DefaultStartHour      = 9
	DefaultEndHour        = 18
	DefaultHorizonDays    = 365
	DefaultTrials         = 200
	DefaultPopulation     = 30
	DefaultGenerations    = 40
)

// hourEpsilon is the tolerance for "no hours left" comparisons so float
// accumulation error never produces a phantom allocation day.
const hourEpsilon = 1e-9

// Params carries the shared inputs of an optimization run. Strategies
// receive it by value and never mutate it.
type Params struct {
	// StartDate is the first day the allocator may book. Unset means today
	// in Location.
	StartDate model.Date

	// CurrentTime, when set, clamps same-day capacity to the wall-clock
	// hours remaining until EndHour.
	CurrentTime *time.Time

	// MaxHoursPerDay is the total capacity of a single day, existing
	// bookings included.
	MaxHoursPerDay float64

	// IncludeAllDays lifts the workday restriction so weekends and
	// holidays become bookable.
	IncludeAllDays bool

	// Holidays marks extra non-workdays on top of weekends. Nil means no
	// holidays.
	Holidays HolidayChecker

	// StartHour and EndHour bound the working day and are stamped onto
	// planned_start and planned_end.
	StartHour int
	EndHour   int

	// Location resolves calendar dates from timestamps.
	Location *time.Location

	// HorizonDays bounds the forward scan for tasks without a deadline.
	HorizonDays int

	// Trials, Population and Generations size the meta-heuristic search.
	Trials      int
	Population  int
	Generations int

	// TimeBudget aborts a meta-heuristic search at the next trial or
	// generation boundary. Zero means unbounded.
	TimeBudget time.Duration

	// Seed fixes the meta-heuristic random stream. Zero seeds from the
	// clock.
	Seed int64

	Logger *slog.Logger
}

// normalized returns a copy with defaults filled in. Every strategy calls
// this once on entry.
func (p Params) normalized() Params {
	if p.Location == nil {
		p.Location = time.UTC
	}
	if p.MaxHoursPerDay <= 0 {
		p.MaxHoursPerDay = DefaultMaxHoursPerDay
	}
	if p.StartHour < 0 || p.StartHour > 23 || p.EndHour < 0 || p.EndHour > 23 || p.EndHour <= p.StartHour {
		p.StartHour = DefaultStartHour
		p.EndHour = DefaultEndHour
	}
	if p.StartDate.IsZero() {
		now := time.Now()
		if p.CurrentTime != nil {
			now = *p.CurrentTime
		}
		p.StartDate = model.DateOf(now, p.Location)
	}
	if p.HorizonDays <= 0 {
		p.HorizonDays = DefaultHorizonDays
	}
	if p.Trials <= 0 {
		p.Trials = DefaultTrials
	}
	if p.Population <= 1 {
		p.Population = DefaultPopulation
	}
	if p.Generations <= 0 {
		p.Generations = DefaultGenerations
	}
	if p.Logger == nil {
		p.Logger = slog.New(slog.DiscardHandler)
	}
	return p
}

// workday reports whether d is a weekday outside the holiday set.
func (p Params) workday(d model.Date) bool {
	switch d.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	if p.Holidays != nil && p.Holidays.IsHoliday(d) {
		return false
	}
	return true
}

// allocatable reports whether the allocator may book hours on d.
func (p Params) allocatable(d model.Date) bool {
	return p.IncludeAllDays || p.workday(d)
}

// allocatableBetween returns the bookable days in [from, to] inclusive.
func (p Params) allocatableBetween(from, to model.Date) []model.Date {
	var days []model.Date
	for d := from; !d.After(to); d = d.AddDays(1) {
		if p.allocatable(d) {
			days = append(days, d)
		}
	}
	return days
}

// deadlineDate resolves a task deadline to a calendar date in the run's
// location.
func (p Params) deadlineDate(t *model.Task) (model.Date, bool) {
	if t.Deadline == nil {
		return "", false
	}
	return model.DateOf(*t.Deadline, p.Location), true
}
