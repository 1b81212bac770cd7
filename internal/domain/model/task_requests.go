//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// CreateTaskRequest represents parameters to create a Task.
type CreateTaskRequest struct {
	Name              string     `json:"name"`
	Priority          *int       `json:"priority,omitempty"`
	EstimatedDuration *float64   `json:"estimated_duration,omitempty"`
	Deadline          *time.Time `json:"deadline,omitempty"`
	PlannedStart      *time.Time `json:"planned_start,omitempty"`
	PlannedEnd        *time.Time `json:"planned_end,omitempty"`
	IsFixed           bool       `json:"is_fixed"`
	Notes             *string    `json:"notes,omitempty"`
	Tags              []string   `json:"tags,omitempty"`
	DependsOn         []int64    `json:"depends_on,omitempty"`
}

// Normalize trims the name and de-spaces tags.
func (r *CreateTaskRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	for i, tag := range r.Tags {
		r.Tags[i] = strings.TrimSpace(tag)
	}
}

// Validate validates CreateTaskRequest.
func (r *CreateTaskRequest) Validate() error {
	if r.Name == "" {
		return fieldErr("name", "name is required and cannot be empty")
	}
	if r.Priority != nil && *r.Priority <= 0 {
		return fieldErr("priority", "priority must be a positive integer")
	}
	if r.EstimatedDuration != nil && *r.EstimatedDuration <= 0 {
		return fieldErr("estimated_duration", "estimated_duration must be positive")
	}
	if (r.PlannedStart == nil) != (r.PlannedEnd == nil) {
		return fieldErr("planned_start", "planned_start and planned_end must be set together")
	}
	if r.PlannedStart != nil && r.PlannedEnd != nil && r.PlannedStart.After(*r.PlannedEnd) {
		return fieldErr("planned_start", "planned_start cannot be after planned_end")
	}
	return ValidateTags(r.Tags)
}

// Updatable task fields recognized by PATCH requests, in validation order.
// Unknown request fields are ignored.
const (
	FieldName              = "name"
	FieldPriority          = "priority"
	FieldEstimatedDuration = "estimated_duration"
	FieldDeadline          = "deadline"
	FieldPlannedStart      = "planned_start"
	FieldPlannedEnd        = "planned_end"
	FieldIsFixed           = "is_fixed"
	FieldStatus            = "status"
	FieldNotes             = "notes"
	FieldTags              = "tags"
	FieldDependsOn         = "depends_on"
	FieldIsArchived        = "is_archived"
)

// updatableFields is the recognition order for PATCH payloads.
var updatableFields = []string{
	FieldName,
	FieldPriority,
	FieldEstimatedDuration,
	FieldDeadline,
	FieldPlannedStart,
	FieldPlannedEnd,
	FieldIsFixed,
	FieldStatus,
	FieldNotes,
	FieldTags,
	FieldDependsOn,
}

// nullableFields may be sent as JSON null to clear the stored value.
var nullableFields = map[string]bool{
	FieldPriority:          true,
	FieldEstimatedDuration: true,
	FieldDeadline:          true,
	FieldPlannedStart:      true,
	FieldPlannedEnd:        true,
	FieldNotes:             true,
	FieldTags:              true,
	FieldDependsOn:         true,
}

// UpdateTaskRequest is a partial task update. Absent fields leave the task
// untouched; nullable fields sent as JSON null clear the stored value.
// Presence is tracked during unmarshaling so callers can distinguish
// "not sent" from "sent as null".
type UpdateTaskRequest struct {
	Name              *string
	Priority          *int
	EstimatedDuration *float64
	Deadline          *time.Time
	PlannedStart      *time.Time
	PlannedEnd        *time.Time
	IsFixed           *bool
	Status            *TaskStatus
	Notes             *string
	Tags              []string
	DependsOn         []int64

	fields []string
	nulls  map[string]bool
}

var jsonNull = []byte("null")

// UnmarshalJSON decodes a PATCH payload, recording which recognized fields
// were present and which of them were explicit nulls.
func (r *UpdateTaskRequest) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.fields = nil
	r.nulls = make(map[string]bool)
	for _, field := range updatableFields {
		value, ok := raw[field]
		if !ok {
			continue
		}
		r.fields = append(r.fields, field)
		if bytes.Equal(bytes.TrimSpace(value), jsonNull) {
			if !nullableFields[field] {
				return fieldErrValue(field, "cannot be null")
			}
			r.nulls[field] = true
			continue
		}
		if err := r.decodeField(field, value); err != nil {
			return err
		}
	}
	return nil
}

func (r *UpdateTaskRequest) decodeField(field string, value json.RawMessage) error {
	var err error
	switch field {
	case FieldName:
		err = json.Unmarshal(value, &r.Name)
	case FieldPriority:
		err = json.Unmarshal(value, &r.Priority)
	case FieldEstimatedDuration:
		err = json.Unmarshal(value, &r.EstimatedDuration)
	case FieldDeadline:
		err = json.Unmarshal(value, &r.Deadline)
	case FieldPlannedStart:
		err = json.Unmarshal(value, &r.PlannedStart)
	case FieldPlannedEnd:
		err = json.Unmarshal(value, &r.PlannedEnd)
	case FieldIsFixed:
		err = json.Unmarshal(value, &r.IsFixed)
	case FieldStatus:
		var s string
		if err = json.Unmarshal(value, &s); err == nil {
			status, ok := ParseTaskStatus(s)
			if !ok {
				return fieldErrValue(FieldStatus, fmt.Sprintf("invalid status %q", s))
			}
			r.Status = &status
		}
	case FieldNotes:
		err = json.Unmarshal(value, &r.Notes)
	case FieldTags:
		err = json.Unmarshal(value, &r.Tags)
		if err == nil && r.Tags == nil {
			r.Tags = []string{}
		}
	case FieldDependsOn:
		err = json.Unmarshal(value, &r.DependsOn)
		if err == nil && r.DependsOn == nil {
			r.DependsOn = []int64{}
		}
	}
	if err != nil {
		return fieldErrValue(field, err.Error())
	}
	return nil
}

func fieldErrValue(field, reason string) error {
	return fieldErr(field, reason)
}

// Fields returns the recognized fields present in the request, in
// recognition order.
func (r *UpdateTaskRequest) Fields() []string {
	return r.fields
}

// Has reports whether the field was present in the request.
func (r *UpdateTaskRequest) Has(field string) bool {
	for _, f := range r.fields {
		if f == field {
			return true
		}
	}
	return false
}

// Clears reports whether the field was sent as an explicit null.
func (r *UpdateTaskRequest) Clears(field string) bool {
	return r.nulls[field]
}

// HasUpdates reports whether any recognized field is present.
func (r *UpdateTaskRequest) HasUpdates() bool {
	return len(r.fields) > 0
}

// TouchesSchedule reports whether the request changes any input of the
// daily-allocation recomputation.
func (r *UpdateTaskRequest) TouchesSchedule() bool {
	return r.Has(FieldPlannedStart) || r.Has(FieldPlannedEnd) || r.Has(FieldEstimatedDuration)
}

// Validate checks the shape of present fields. Cross-field and
// storage-dependent rules (dependency existence, status transitions) run in
// the validation registry.
func (r *UpdateTaskRequest) Validate() error {
	if !r.HasUpdates() {
		return fieldErr("body", "at least one field must be updated")
	}
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return fieldErr(FieldName, "name cannot be empty")
	}
	if r.Tags != nil {
		for i, tag := range r.Tags {
			r.Tags[i] = strings.TrimSpace(tag)
		}
	}
	return nil
}
