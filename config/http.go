package config

import "time"

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// BaseURL is the base URL of the application (e.g., "https://taskdog.example.com").
	// Used for generating absolute URLs in OAuth redirects.
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`

	// CookieDomain is the domain for session cookies.
	// Leave empty to use the request domain.
	CookieDomain string `env:"APP_COOKIE_DOMAIN" envDefault:""`

	// CompressionEnabled enables gzip compression for JSON responses.
	CompressionEnabled bool `env:"HTTP_COMPRESSION" envDefault:"true"`

	// CompressionLevel is the gzip compression level (1-9).
	// Default is 6 (standard gzip default).
	CompressionLevel int `env:"HTTP_COMPRESSION_LEVEL" envDefault:"6"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	// Clamp compression level to valid gzip range (1-9)
	if h.CompressionLevel < 1 {
		h.CompressionLevel = 1
	}
	if h.CompressionLevel > 9 {
		h.CompressionLevel = 9
	}
}

// BroadcastConfig controls the WebSocket event hub.
type BroadcastConfig struct {
	// QueueSize is the per-client send queue depth. When a slow client's
	// queue fills, the oldest queued event is dropped.
	QueueSize int `env:"QUEUE_SIZE" envDefault:"32"`

	// WriteTimeout bounds a single frame write to a client.
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
}

// Sanitize applies guardrails to broadcast configuration values.
func (b *BroadcastConfig) Sanitize() {
	if b.QueueSize < 1 {
		b.QueueSize = 1
	}
	if b.WriteTimeout <= 0 {
		b.WriteTimeout = 10 * time.Second
	}
}
