package schedule

import (
	"time"

	"github.com/taskdog/taskdog/internal/domain/model"
)

// SpreadWeekdayOnly distributes a task's estimated duration evenly across
// the weekdays of its planned period, skipping holidays. It returns an
// empty map when the task has no planned period or no estimate, or when
// the whole period falls on weekends and holidays. Optimization uses this
// spread so generated plans never imply weekend work.
func SpreadWeekdayOnly(t *model.Task, holidays HolidayChecker, loc *time.Location) model.HoursByDate {
	from, to, total, ok := spreadInputs(t, loc)
	if !ok {
		return model.HoursByDate{}
	}
	return spreadEvenly(total, weekdaysBetween(from, to, holidays))
}

// SpreadActualSchedule is SpreadWeekdayOnly with a fallback: when the
// planned period contains no workdays at all, the hours spread across
// every calendar day instead. Display paths use this so a manually
// scheduled weekend shows the hours where the user put them.
func SpreadActualSchedule(t *model.Task, holidays HolidayChecker, loc *time.Location) model.HoursByDate {
	from, to, total, ok := spreadInputs(t, loc)
	if !ok {
		return model.HoursByDate{}
	}
	days := weekdaysBetween(from, to, holidays)
	if len(days) == 0 {
		for d := from; !d.After(to); d = d.AddDays(1) {
			days = append(days, d)
		}
	}
	return spreadEvenly(total, days)
}

func spreadInputs(t *model.Task, loc *time.Location) (from, to model.Date, total float64, ok bool) {
	if t == nil || t.PlannedStart == nil || t.PlannedEnd == nil || t.EstimatedDuration == nil {
		return "", "", 0, false
	}
	from = model.DateOf(*t.PlannedStart, loc)
	to = model.DateOf(*t.PlannedEnd, loc)
	if to.Before(from) {
		return "", "", 0, false
	}
	return from, to, *t.EstimatedDuration, true
}

func weekdaysBetween(from, to model.Date, holidays HolidayChecker) []model.Date {
	var days []model.Date
	for d := from; !d.After(to); d = d.AddDays(1) {
		switch d.Weekday() {
		case time.Saturday, time.Sunday:
			continue
		}
		if holidays != nil && holidays.IsHoliday(d) {
			continue
		}
		days = append(days, d)
	}
	return days
}

func spreadEvenly(total float64, days []model.Date) model.HoursByDate {
	out := make(model.HoursByDate, len(days))
	if len(days) == 0 {
		return out
	}
	per := total / float64(len(days))
	for _, d := range days {
		out[d] = per
	}
	return out
}
