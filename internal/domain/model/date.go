//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// dateLayout is the canonical calendar-date form used for allocation keys.
const dateLayout = "2006-01-02"

// Date is a calendar date in "YYYY-MM-DD" form. The representation is chosen
// so that lexicographic order equals chronological order, which lets dates be
// used directly as sortable map keys and JSON object keys.
type Date string

// ParseDate parses a "YYYY-MM-DD" string into a Date.
func ParseDate(value string) (Date, error) {
	if _, err := time.Parse(dateLayout, value); err != nil {
		return "", fmt.Errorf("invalid date %q: must be YYYY-MM-DD", value)
	}
	return Date(value), nil
}

// DateOf returns the calendar date of t in the given location.
// A nil location defaults to UTC.
func DateOf(t time.Time, loc *time.Location) Date {
	if loc == nil {
		loc = time.UTC
	}
	return Date(t.In(loc).Format(dateLayout))
}

// Validate reports whether the date is well-formed.
func (d Date) Validate() error {
	if d == "" {
		return errors.New("date cannot be empty")
	}
	_, err := time.Parse(dateLayout, string(d))
	if err != nil {
		return fmt.Errorf("invalid date %q: must be YYYY-MM-DD", string(d))
	}
	return nil
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d == ""
}

// Time returns midnight of the date in the given location.
// A nil location defaults to UTC. Invalid dates yield the zero time.
func (d Date) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(dateLayout, string(d), loc)
	if err != nil {
		return time.Time{}
	}
	return t
}

// At returns the date at the given hour in the given location.
func (d Date) At(hour int, loc *time.Location) time.Time {
	return d.Time(loc).Add(time.Duration(hour) * time.Hour)
}

// AddDays returns the date shifted by n calendar days (n may be negative).
// The arithmetic is done in UTC so daylight-saving shifts cannot skip a day.
func (d Date) AddDays(n int) Date {
	t := d.Time(time.UTC)
	if t.IsZero() {
		return d
	}
	return Date(t.AddDate(0, 0, n).Format(dateLayout))
}

// Weekday returns the day of week. Calendar dates carry no zone, so the
// result is location independent.
func (d Date) Weekday() time.Weekday {
	return d.Time(time.UTC).Weekday()
}

// Before reports whether d is chronologically before other.
func (d Date) Before(other Date) bool {
	return d < other
}

// After reports whether d is chronologically after other.
func (d Date) After(other Date) bool {
	return d > other
}

// DaysUntil returns the whole calendar days from d to other
// (negative when other is earlier).
func (d Date) DaysUntil(other Date) int {
	from := d.Time(time.UTC)
	to := other.Time(time.UTC)
	return int(to.Sub(from) / (24 * time.Hour))
}

// HoursByDate maps calendar dates to hour totals. It backs both planned
// daily allocations and logged actual hours.
type HoursByDate map[Date]float64

// Clone returns a deep copy. A nil map clones to nil.
func (h HoursByDate) Clone() HoursByDate {
	if h == nil {
		return nil
	}
	out := make(HoursByDate, len(h))
	for d, v := range h {
		out[d] = v
	}
	return out
}

// Total returns the sum of all hour values.
func (h HoursByDate) Total() float64 {
	var total float64
	for _, v := range h {
		total += v
	}
	return total
}

// Dates returns the keys in chronological order.
func (h HoursByDate) Dates() []Date {
	dates := make([]Date, 0, len(h))
	for d := range h {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i] < dates[j] })
	return dates
}

// Validate checks that all keys are well-formed dates and all values are
// non-negative.
func (h HoursByDate) Validate() error {
	for d, v := range h {
		if err := d.Validate(); err != nil {
			return err
		}
		if v < 0 {
			return fmt.Errorf("hours for %s cannot be negative", string(d))
		}
	}
	return nil
}
