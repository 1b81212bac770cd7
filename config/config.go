package config

import "log/slog"

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - auth.go: Authentication and session configuration
//   - database.go: Database and Redis configuration
//   - http.go: HTTP server and broadcast configuration
//   - schedule.go: Working time, holiday region, task defaults, and
//     optimization configuration
//   - services.go: Service mode and autoplan configuration
//   - webhooks.go: Webhook delivery configuration
type AppConfig struct {
	// IsDev controls development mode behavior (relaxed auth defaults,
	// seed tooling). Set DEV=true for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// Authentication configuration
	Auth AuthConfig

	// Database configuration
	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`

	// HTTP server configuration
	HTTP      HTTPConfig
	Broadcast BroadcastConfig `envPrefix:"BROADCAST_"`

	// Scheduling configuration
	Time         TimeConfig         `envPrefix:"TIME_"`
	Region       RegionConfig       `envPrefix:"REGION_"`
	Tasks        TaskConfig         `envPrefix:"TASK_"`
	Optimization OptimizationConfig `envPrefix:"OPTIMIZATION_"`

	// Webhook delivery configuration
	Webhooks WebhookConfig `envPrefix:"WEBHOOK_"`

	// Service mode configuration
	Services string `env:"SERVICES" envDefault:"http"`

	// Autoplan configuration
	Autoplan AutoplanConfig `envPrefix:"AUTOPLAN_"`

	// Observability configuration
	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// Invalid values are clamped to safe defaults; sub-configs that rewrite a
// value log a warning through the given logger. A nil logger suppresses the
// warnings but still clamps.
func (c *AppConfig) Sanitize(logger *slog.Logger) {
	c.HTTP.Sanitize()
	c.Broadcast.Sanitize()
	c.Time.Sanitize(logger)
	c.Region.Sanitize(logger)
	c.Tasks.Sanitize()
	c.Optimization.Sanitize(logger)
	c.Webhooks.Sanitize()
	c.Autoplan.Sanitize()
	c.Observability.Sanitize()
}

// GetEnabledServices returns the enabled services based on the Services field.
func (c *AppConfig) GetEnabledServices() (map[ServiceMode]bool, error) {
	return ParseServices(c.Services)
}

// IsHTTPServerEnabled returns true if the HTTP server service is enabled.
func (c *AppConfig) IsHTTPServerEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModeHTTP]
}

// IsAutoplanEnabled returns true if the autoplan runner service is enabled.
func (c *AppConfig) IsAutoplanEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModeAutoplan]
}
