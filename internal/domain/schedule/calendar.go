package schedule

import (
	"github.com/taskdog/taskdog/internal/domain/model"
)

// HolidayChecker marks calendar dates that are not workdays even though
// they fall on a weekday.
type HolidayChecker interface {
	IsHoliday(d model.Date) bool
}

// HolidayFunc adapts a plain function to a HolidayChecker.
type HolidayFunc func(d model.Date) bool

// IsHoliday implements HolidayChecker.
func (f HolidayFunc) IsHoliday(d model.Date) bool {
	return f(d)
}

// HolidaySet is a fixed set of holiday dates, mainly for tests and manual
// overrides.
type HolidaySet map[model.Date]bool

// IsHoliday implements HolidayChecker.
func (s HolidaySet) IsHoliday(d model.Date) bool {
	return s[d]
}
