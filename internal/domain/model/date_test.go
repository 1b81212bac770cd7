//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-10-20")
	require.NoError(t, err)
	assert.Equal(t, Date("2025-10-20"), d)

	_, err = ParseDate("2025-13-01")
	assert.Error(t, err)

	_, err = ParseDate("20/10/2025")
	assert.Error(t, err)
}

func TestDateOf_UsesLocation(t *testing.T) {
	// 2025-10-20T23:30Z is already the 21st in UTC+9.
	instant := time.Date(2025, 10, 20, 23, 30, 0, 0, time.UTC)
	tokyo := time.FixedZone("UTC+9", 9*3600)

	assert.Equal(t, Date("2025-10-20"), DateOf(instant, time.UTC))
	assert.Equal(t, Date("2025-10-21"), DateOf(instant, tokyo))
	assert.Equal(t, Date("2025-10-20"), DateOf(instant, nil))
}

func TestDate_AddDays(t *testing.T) {
	d := Date("2025-10-31")
	assert.Equal(t, Date("2025-11-01"), d.AddDays(1))
	assert.Equal(t, Date("2025-10-24"), d.AddDays(-7))
	assert.Equal(t, d, d.AddDays(0))
}

func TestDate_Weekday(t *testing.T) {
	assert.Equal(t, time.Monday, Date("2025-10-20").Weekday())
	assert.Equal(t, time.Sunday, Date("2025-10-26").Weekday())
}

func TestDate_Ordering(t *testing.T) {
	a := Date("2025-10-20")
	b := Date("2025-11-03")
	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.Equal(t, 14, a.DaysUntil(b))
	assert.Equal(t, -14, b.DaysUntil(a))
}

func TestDate_At(t *testing.T) {
	got := Date("2025-10-20").At(9, time.UTC)
	assert.Equal(t, time.Date(2025, 10, 20, 9, 0, 0, 0, time.UTC), got)
}

func TestHoursByDate_CloneIsIndependent(t *testing.T) {
	orig := HoursByDate{"2025-10-20": 6, "2025-10-21": 2.5}
	clone := orig.Clone()
	clone["2025-10-20"] = 1

	assert.Equal(t, 6.0, orig["2025-10-20"])
	assert.InDelta(t, 8.5, orig.Total(), 1e-9)

	var empty HoursByDate
	assert.Nil(t, empty.Clone())
}

func TestHoursByDate_DatesSorted(t *testing.T) {
	h := HoursByDate{"2025-11-01": 1, "2025-10-20": 2, "2025-10-21": 3}
	assert.Equal(t, []Date{"2025-10-20", "2025-10-21", "2025-11-01"}, h.Dates())
}

func TestHoursByDate_Validate(t *testing.T) {
	assert.NoError(t, HoursByDate{"2025-10-20": 0}.Validate())
	assert.Error(t, HoursByDate{"2025-10-20": -1}.Validate())
	assert.Error(t, HoursByDate{"not-a-date": 1}.Validate())
}
