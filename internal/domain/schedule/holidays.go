package schedule

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/au"
	"github.com/rickar/cal/v2/ca"
	"github.com/rickar/cal/v2/de"
	"github.com/rickar/cal/v2/es"
	"github.com/rickar/cal/v2/fr"
	"github.com/rickar/cal/v2/gb"
	"github.com/rickar/cal/v2/it"
	"github.com/rickar/cal/v2/jp"
	"github.com/rickar/cal/v2/nl"
	"github.com/rickar/cal/v2/us"

	"github.com/taskdog/taskdog/internal/domain/model"
)

// countryHolidays maps ISO 3166-1 alpha-2 codes to national holiday sets.
// The au package only ships per-state calendars; NSW stands in for the
// national set.
var countryHolidays = map[string][]*cal.Holiday{
	"AU": au.HolidaysNSW,
	"CA": ca.Holidays,
	"DE": de.Holidays,
	"ES": es.Holidays,
	"FR": fr.Holidays,
	"GB": gb.Holidays,
	"IT": it.Holidays,
	"JP": jp.Holidays,
	"NL": nl.Holidays,
	"US": us.Holidays,
}

// SupportedCountries returns the ISO country codes with a registered
// holiday calendar, sorted.
func SupportedCountries() []string {
	codes := make([]string, 0, len(countryHolidays))
	for code := range countryHolidays {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// CountryHolidays builds a HolidayChecker for the given ISO country code.
// An empty code returns a nil checker, meaning no holidays.
func CountryHolidays(country string) (HolidayChecker, error) {
	code := strings.ToUpper(strings.TrimSpace(country))
	if code == "" {
		return nil, nil
	}
	holidays, ok := countryHolidays[code]
	if !ok {
		return nil, fmt.Errorf("no holiday calendar for country %q (supported: %s)",
			country, strings.Join(SupportedCountries(), ", "))
	}
	c := &cal.Calendar{Name: code}
	c.AddHoliday(holidays...)
	return &countryChecker{calendar: c}, nil
}

type countryChecker struct {
	calendar *cal.Calendar
}

// IsHoliday reports whether d is an observed holiday in the country's
// calendar. Observed dates matter here: a holiday shifted to Monday blocks
// the Monday, not the weekend it nominally falls on.
func (c *countryChecker) IsHoliday(d model.Date) bool {
	_, observed, _ := c.calendar.IsHoliday(d.Time(time.UTC))
	return observed
}
