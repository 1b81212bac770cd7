package config

import (
	"strings"
	"time"
)

// WebhookConfig controls outbound webhook delivery.
type WebhookConfig struct {
	// AllowedDomains restricts sink target URLs by registrable domain
	// (eTLD+1). Semicolon-separated; empty allows any target.
	AllowedDomains []string `env:"ALLOWED_DOMAINS" envSeparator:";"`

	// Timeout bounds one delivery attempt.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`

	// RetryLimit is the number of delivery attempts per sink per event.
	RetryLimit int `env:"RETRY_LIMIT" envDefault:"3"`

	// RetryBackoff is the base delay between attempts; attempt n waits
	// n * RetryBackoff.
	RetryBackoff time.Duration `env:"RETRY_BACKOFF" envDefault:"500ms"`
}

// Sanitize applies guardrails to webhook configuration values.
func (w *WebhookConfig) Sanitize() {
	cleaned := w.AllowedDomains[:0]
	for _, d := range w.AllowedDomains {
		if trimmed := strings.ToLower(strings.TrimSpace(d)); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	w.AllowedDomains = cleaned

	if w.Timeout <= 0 {
		w.Timeout = 10 * time.Second
	}
	if w.RetryLimit < 1 {
		w.RetryLimit = 1
	}
	if w.RetryBackoff <= 0 {
		w.RetryBackoff = 500 * time.Millisecond
	}
}
