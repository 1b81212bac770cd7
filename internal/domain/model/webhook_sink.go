//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// Webhook sink name constraints.
	minWebhookSinkNameLen = 3
	maxWebhookSinkNameLen = 255
	maxWebhookURLLen      = 1024
	maxEventFilterLen     = 2048
)

// WebhookSink is an outbound HTTP destination for broadcast events.
// EventFilter is an optional JMESPath expression evaluated against the event
// envelope; an empty filter matches every event.
type WebhookSink struct {
	ID          string    `json:"id"                     db:"id"`
	Name        string    `json:"name"                   db:"name"`
	URL         string    `json:"url"                    db:"url"`
	EventFilter string    `json:"event_filter,omitempty" db:"event_filter"`
	Secret      string    `json:"-"                      db:"secret"`
	Enabled     bool      `json:"enabled"                db:"enabled"`
	CreatedAt   time.Time `json:"created_at"             db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"             db:"updated_at"`
}

// CreateWebhookSinkRequest represents a request to register a webhook sink.
type CreateWebhookSinkRequest struct {
	Name        string  `json:"name"`
	URL         string  `json:"url"`
	EventFilter string  `json:"event_filter,omitempty"`
	Secret      string  `json:"secret,omitempty"`
	Enabled     *bool   `json:"enabled,omitempty"`
	ID          *string `json:"-"`
}

// UpdateWebhookSinkRequest represents a partial webhook sink update.
type UpdateWebhookSinkRequest struct {
	Name        *string `json:"name,omitempty"`
	URL         *string `json:"url,omitempty"`
	EventFilter *string `json:"event_filter,omitempty"`
	Secret      *string `json:"secret,omitempty"`
	Enabled     *bool   `json:"enabled,omitempty"`
}

// Normalize trims the textual fields.
func (r *CreateWebhookSinkRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.URL = strings.TrimSpace(r.URL)
	r.EventFilter = strings.TrimSpace(r.EventFilter)
}

// Validate validates the CreateWebhookSinkRequest fields. Filter syntax and
// the domain allowlist are checked by the webhook service, which owns the
// evaluator and the allowed-domain configuration.
func (r *CreateWebhookSinkRequest) Validate() error {
	if err := validateWebhookSinkName(r.Name); err != nil {
		return err
	}
	if err := validateWebhookURL(r.URL); err != nil {
		return err
	}
	return validateEventFilterLen(r.EventFilter)
}

// Normalize trims the textual fields that are present.
func (r *UpdateWebhookSinkRequest) Normalize() {
	if r.Name != nil {
		n := strings.TrimSpace(*r.Name)
		r.Name = &n
	}
	if r.URL != nil {
		u := strings.TrimSpace(*r.URL)
		r.URL = &u
	}
	if r.EventFilter != nil {
		f := strings.TrimSpace(*r.EventFilter)
		r.EventFilter = &f
	}
}

// HasUpdates reports whether any field is set.
func (r *UpdateWebhookSinkRequest) HasUpdates() bool {
	return r.Name != nil || r.URL != nil || r.EventFilter != nil || r.Secret != nil || r.Enabled != nil
}

// Validate validates the UpdateWebhookSinkRequest fields and ensures at
// least one field is being updated.
func (r *UpdateWebhookSinkRequest) Validate() error {
	if !r.HasUpdates() {
		return errors.New("at least one field must be updated")
	}
	if r.Name != nil {
		if err := validateWebhookSinkName(*r.Name); err != nil {
			return err
		}
	}
	if r.URL != nil {
		if err := validateWebhookURL(*r.URL); err != nil {
			return err
		}
	}
	if r.EventFilter != nil {
		return validateEventFilterLen(*r.EventFilter)
	}
	return nil
}

func validateWebhookSinkName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return errors.New("name is required and cannot be empty")
	}
	nameLen := utf8.RuneCountInString(trimmed)
	if nameLen < minWebhookSinkNameLen {
		return errors.New("name must be at least 3 characters")
	}
	if nameLen > maxWebhookSinkNameLen {
		return errors.New("name cannot exceed 255 characters")
	}
	return nil
}

func validateWebhookURL(raw string) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return errors.New("url is required and cannot be empty")
	}
	if utf8.RuneCountInString(trimmed) > maxWebhookURLLen {
		return errors.New("url cannot exceed 1024 characters")
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return errors.New("url must be a valid URL")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return errors.New("url must use http or https scheme")
	}
	if parsed.Host == "" {
		return errors.New("url must have a valid host")
	}
	return nil
}

func validateEventFilterLen(filter string) error {
	if utf8.RuneCountInString(filter) > maxEventFilterLen {
		return errors.New("event_filter cannot exceed 2048 characters")
	}
	return nil
}
