package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ServiceMode represents the available service modes.
type ServiceMode string

const (
	// ServiceModeHTTP runs the HTTP server.
	ServiceModeHTTP ServiceMode = "http"
	// ServiceModeAutoplan runs the periodic schedule re-optimization loop.
	ServiceModeAutoplan ServiceMode = "autoplan"
)

// ValidServiceModes returns all valid service mode names.
func ValidServiceModes() []ServiceMode {
	return []ServiceMode{
		ServiceModeHTTP,
		ServiceModeAutoplan,
	}
}

// ParseServices parses a comma-delimited string of service names and returns the enabled services.
// It validates that all service names are valid and returns an error if any are invalid.
func ParseServices(servicesStr string) (map[ServiceMode]bool, error) {
	services := make(map[ServiceMode]bool)

	if servicesStr == "" {
		return services, errors.New("at least one service must be specified")
	}

	parts := strings.Split(servicesStr, ",")
	for _, part := range parts {
		serviceName := strings.TrimSpace(part)
		if serviceName == "" {
			continue
		}

		mode := ServiceMode(serviceName)
		switch mode {
		case ServiceModeHTTP, ServiceModeAutoplan:
			services[mode] = true
		default:
			return nil, fmt.Errorf(
				"invalid service name: %q (valid options: http, autoplan)",
				serviceName,
			)
		}
	}

	if len(services) == 0 {
		return nil, errors.New("at least one valid service must be specified")
	}

	return services, nil
}

// AutoplanConfig contains autoplan runner configuration. The runner
// periodically re-optimizes the schedule with the default algorithm so plans
// track reality without a manual optimize call.
type AutoplanConfig struct {
	// Interval is the time between autoplan runs.
	Interval time.Duration `env:"INTERVAL" envDefault:"24h"`
}

// Sanitize applies guardrails to autoplan configuration values.
func (a *AutoplanConfig) Sanitize() {
	if a.Interval < time.Minute {
		a.Interval = time.Minute
	}
}
