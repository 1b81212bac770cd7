package config

import (
	"log/slog"
	"time"

	"github.com/taskdog/taskdog/internal/domain/schedule"
)

// TimeConfig describes the working day used for same-day capacity math and
// date bucketing.
type TimeConfig struct {
	// DefaultStartHour is the first working hour of the day (0-23).
	DefaultStartHour int `env:"DEFAULT_START_HOUR" envDefault:"9"`

	// DefaultEndHour is the hour the working day ends (0-23, exclusive).
	DefaultEndHour int `env:"DEFAULT_END_HOUR" envDefault:"18"`

	// Zone is the IANA time zone name all date bucketing happens in.
	Zone string `env:"ZONE" envDefault:"UTC"`
}

// Sanitize clamps the working hours to a sane window. An inverted window
// resets both hours to their defaults.
func (t *TimeConfig) Sanitize(logger *slog.Logger) {
	if t.DefaultStartHour < 0 || t.DefaultStartHour > 23 {
		warn(logger, "invalid start hour, using default",
			"start_hour", t.DefaultStartHour, "default", schedule.DefaultStartHour)
		t.DefaultStartHour = schedule.DefaultStartHour
	}
	if t.DefaultEndHour < 0 || t.DefaultEndHour > 23 {
		warn(logger, "invalid end hour, using default",
			"end_hour", t.DefaultEndHour, "default", schedule.DefaultEndHour)
		t.DefaultEndHour = schedule.DefaultEndHour
	}
	if t.DefaultStartHour >= t.DefaultEndHour {
		warn(logger, "start hour is not before end hour, using defaults",
			"start_hour", t.DefaultStartHour, "end_hour", t.DefaultEndHour)
		t.DefaultStartHour = schedule.DefaultStartHour
		t.DefaultEndHour = schedule.DefaultEndHour
	}
}

// Location resolves the configured zone name. Unknown names fall back to UTC.
func (t *TimeConfig) Location() *time.Location {
	loc, err := time.LoadLocation(t.Zone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// RegionConfig selects the public-holiday calendar for workday math.
type RegionConfig struct {
	// Country is an ISO 3166-1 alpha-2 code. Empty means no holiday
	// calendar: only weekends are non-workdays.
	Country string `env:"COUNTRY" envDefault:""`
}

// Sanitize resets unknown country codes to empty so startup never fails on a
// typo; the warning names the supported codes.
func (r *RegionConfig) Sanitize(logger *slog.Logger) {
	if _, err := schedule.CountryHolidays(r.Country); err != nil {
		warn(logger, "unknown holiday country, disabling holiday calendar",
			"country", r.Country, "error", err)
		r.Country = ""
	}
}

// Holidays builds the holiday checker for the configured country.
// Returns nil when no country is configured.
func (r *RegionConfig) Holidays() schedule.HolidayChecker {
	checker, err := schedule.CountryHolidays(r.Country)
	if err != nil {
		return nil
	}
	return checker
}

// TaskConfig contains task creation defaults.
type TaskConfig struct {
	// DefaultPriority is assigned to tasks created without a priority.
	DefaultPriority int `env:"DEFAULT_PRIORITY" envDefault:"10"`
}

// Sanitize applies guardrails to task configuration values.
func (t *TaskConfig) Sanitize() {
	if t.DefaultPriority < 1 {
		t.DefaultPriority = 10
	}
}

// OptimizationConfig contains schedule optimizer defaults. Request fields
// override these per run.
type OptimizationConfig struct {
	// DefaultAlgorithm is used when a run names no algorithm.
	DefaultAlgorithm string `env:"DEFAULT_ALGORITHM" envDefault:"greedy"`

	// MaxHoursPerDay is the daily capacity in hours.
	MaxHoursPerDay float64 `env:"MAX_HOURS_PER_DAY" envDefault:"6.0"`

	// MonteCarloTrials is the number of random orderings a monte_carlo
	// run evaluates.
	MonteCarloTrials int `env:"MONTE_CARLO_TRIALS" envDefault:"200"`

	// GeneticPopulation / GeneticGenerations size a genetic run.
	GeneticPopulation  int `env:"GENETIC_POPULATION"  envDefault:"30"`
	GeneticGenerations int `env:"GENETIC_GENERATIONS" envDefault:"40"`

	// TimeBudget bounds stochastic runs. Zero means unbounded.
	TimeBudget time.Duration `env:"TIME_BUDGET" envDefault:"3s"`

	// HorizonDays bounds forward scans for tasks without deadlines.
	HorizonDays int `env:"HORIZON_DAYS" envDefault:"365"`
}

// Sanitize applies guardrails to optimization configuration values.
func (o *OptimizationConfig) Sanitize(logger *slog.Logger) {
	if _, ok := schedule.ParseAlgorithm(o.DefaultAlgorithm); !ok {
		warn(logger, "unknown default algorithm, using greedy",
			"algorithm", o.DefaultAlgorithm)
		o.DefaultAlgorithm = string(schedule.AlgorithmGreedy)
	}
	if o.MaxHoursPerDay <= 0 || o.MaxHoursPerDay > 24 {
		warn(logger, "max hours per day out of range, using default",
			"max_hours_per_day", o.MaxHoursPerDay, "default", schedule.DefaultMaxHoursPerDay)
		o.MaxHoursPerDay = schedule.DefaultMaxHoursPerDay
	}
	if o.MonteCarloTrials < 1 {
		o.MonteCarloTrials = schedule.DefaultTrials
	}
	if o.GeneticPopulation < 2 {
		o.GeneticPopulation = schedule.DefaultPopulation
	}
	if o.GeneticGenerations < 1 {
		o.GeneticGenerations = schedule.DefaultGenerations
	}
	if o.TimeBudget < 0 {
		o.TimeBudget = 0
	}
	if o.HorizonDays < 1 {
		o.HorizonDays = schedule.DefaultHorizonDays
	}
}

func warn(logger *slog.Logger, msg string, args ...any) {
	if logger == nil {
		return
	}
	logger.Warn(msg, args...)
}
