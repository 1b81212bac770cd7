package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountryHolidays_US(t *testing.T) {
	checker, err := CountryHolidays("US")
	require.NoError(t, err)
	require.NotNil(t, checker)

	assert.True(t, checker.IsHoliday("2025-07-04"), "Independence Day")
	assert.True(t, checker.IsHoliday("2025-12-25"), "Christmas Day")
	assert.False(t, checker.IsHoliday("2025-07-03"))
}

func TestCountryHolidays_UsesObservedDates(t *testing.T) {
	checker, err := CountryHolidays("US")
	require.NoError(t, err)

	// July 4th 2026 falls on a Saturday and is observed on the Friday.
	assert.True(t, checker.IsHoliday("2026-07-03"))
}

func TestCountryHolidays_CaseAndSpaceInsensitive(t *testing.T) {
	checker, err := CountryHolidays(" us ")
	require.NoError(t, err)
	require.NotNil(t, checker)

	assert.True(t, checker.IsHoliday("2025-12-25"))
}

func TestCountryHolidays_EmptyMeansNoHolidays(t *testing.T) {
	checker, err := CountryHolidays("")
	require.NoError(t, err)
	assert.Nil(t, checker)
}

func TestCountryHolidays_UnknownCountry(t *testing.T) {
	_, err := CountryHolidays("XX")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"XX"`)
}

func TestSupportedCountries_SortedAndComplete(t *testing.T) {
	codes := SupportedCountries()

	assert.IsIncreasing(t, codes)
	assert.Contains(t, codes, "US")
	assert.Contains(t, codes, "GB")
	assert.Contains(t, codes, "JP")
}

func TestCountryHolidays_EveryRegisteredCountry(t *testing.T) {
	for _, code := range SupportedCountries() {
		checker, err := CountryHolidays(code)
		require.NoError(t, err, code)
		require.NotNil(t, checker, code)
		require.NotEmpty(t, countryHolidays[code], code)

		// New Year's Day is in every registered calendar and 2026-01-01
		// falls on a Thursday, so no observation shift.
		assert.True(t, checker.IsHoliday("2026-01-01"), code)
	}
}
