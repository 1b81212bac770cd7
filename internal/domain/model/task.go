//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxTaskNameLen = 255
)

// tagPattern restricts tags to letters, digits, underscore, and hyphen.
var tagPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCanceled   TaskStatus = "canceled"
)

// Valid reports whether the status is one of the supported states.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCanceled:
		return true
	default:
		return false
	}
}

// Finished reports whether the status is terminal.
func (s TaskStatus) Finished() bool {
	return s == TaskStatusCompleted || s == TaskStatusCanceled
}

// ParseTaskStatus normalizes a status string and reports whether it is supported.
func ParseTaskStatus(value string) (TaskStatus, bool) {
	status := TaskStatus(strings.ToLower(strings.TrimSpace(value)))
	if status.Valid() {
		return status, true
	}
	return "", false
}

// Sentinel errors returned by lifecycle transitions. The service layer maps
// them onto API error kinds with task context attached.
var (
	// ErrTaskFinished indicates a lifecycle operation on a completed or
	// canceled task.
	ErrTaskFinished = errors.New("task is already finished")
)

// FieldError is a validation failure tied to a specific task field.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func fieldErr(field, reason string) *FieldError {
	return &FieldError{Field: field, Reason: reason}
}

// Task is a unit of work with optional scheduling metadata. Planned fields
// are produced by the schedule optimizer; actual fields record observed
// execution.
type Task struct {
	ID                int64       `json:"id"                           db:"id"`
	Name              string      `json:"name"                         db:"name"`
	Priority          *int        `json:"priority,omitempty"           db:"priority"`
	EstimatedDuration *float64    `json:"estimated_duration,omitempty" db:"estimated_duration"`
	Deadline          *time.Time  `json:"deadline,omitempty"           db:"deadline"`
	Status            TaskStatus  `json:"status"                       db:"status"`
	PlannedStart      *time.Time  `json:"planned_start,omitempty"      db:"planned_start"`
	PlannedEnd        *time.Time  `json:"planned_end,omitempty"        db:"planned_end"`
	ActualStart       *time.Time  `json:"actual_start,omitempty"       db:"actual_start"`
	ActualEnd         *time.Time  `json:"actual_end,omitempty"         db:"actual_end"`
	ActualDuration    *float64    `json:"actual_duration,omitempty"    db:"actual_duration"`
	Notes             *string     `json:"notes,omitempty"              db:"notes"`
	IsFixed           bool        `json:"is_fixed"                     db:"is_fixed"`
	IsArchived        bool        `json:"is_archived"                  db:"is_archived"`
	Tags              []string    `json:"tags"                         db:"tags_json"`
	DependsOn         []int64     `json:"depends_on"                   db:"depends_on_json"`
	DailyAllocations  HoursByDate `json:"daily_allocations"            db:"daily_allocations_json"`
	ActualDailyHours  HoursByDate `json:"actual_daily_hours"           db:"actual_daily_hours_json"`
	CreatedAt         time.Time   `json:"created_at"                   db:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"                   db:"updated_at"`
}

// Validate checks the construction-time invariants. It returns a *FieldError
// naming the first violated field.
func (t *Task) Validate() error {
	name := strings.TrimSpace(t.Name)
	if name == "" {
		return fieldErr("name", "name is required and cannot be empty")
	}
	if utf8.RuneCountInString(name) > maxTaskNameLen {
		return fieldErr("name", "name cannot exceed 255 characters")
	}
	if !t.Status.Valid() {
		return fieldErr("status", fmt.Sprintf("invalid status %q", string(t.Status)))
	}
	if t.Priority != nil && *t.Priority <= 0 {
		return fieldErr("priority", "priority must be a positive integer")
	}
	if t.EstimatedDuration != nil && *t.EstimatedDuration <= 0 {
		return fieldErr("estimated_duration", "estimated_duration must be positive")
	}
	if err := ValidateTags(t.Tags); err != nil {
		return err
	}
	if t.PlannedStart != nil && t.PlannedEnd != nil && t.PlannedStart.After(*t.PlannedEnd) {
		return fieldErr("planned_start", "planned_start cannot be after planned_end")
	}
	if (t.PlannedStart == nil) != (t.PlannedEnd == nil) {
		return fieldErr("planned_start", "planned_start and planned_end must be set together")
	}
	if t.ActualStart != nil && t.ActualEnd != nil && t.ActualStart.After(*t.ActualEnd) {
		return fieldErr("actual_start", "actual_start cannot be after actual_end")
	}
	if err := t.DailyAllocations.Validate(); err != nil {
		return fieldErr("daily_allocations", err.Error())
	}
	if err := t.ActualDailyHours.Validate(); err != nil {
		return fieldErr("actual_daily_hours", err.Error())
	}
	for _, dep := range t.DependsOn {
		if dep == t.ID && t.ID != 0 {
			return fieldErr("depends_on", "a task cannot depend on itself")
		}
	}
	return nil
}

// ValidateTags checks tag charset, non-emptiness, and uniqueness.
func ValidateTags(tags []string) error {
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		if strings.TrimSpace(tag) == "" {
			return fieldErr("tags", "tags cannot contain empty entries")
		}
		if !tagPattern.MatchString(tag) {
			return fieldErr("tags", fmt.Sprintf("tag %q may only contain letters, digits, '_' and '-'", tag))
		}
		if seen[tag] {
			return fieldErr("tags", fmt.Sprintf("duplicate tag %q", tag))
		}
		seen[tag] = true
	}
	return nil
}

// Clone returns a deep copy of the task. Schedule strategies operate on
// clones so a failed run never leaves partial mutations behind.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	out := *t
	out.Priority = clonePtr(t.Priority)
	out.EstimatedDuration = clonePtr(t.EstimatedDuration)
	out.Deadline = clonePtr(t.Deadline)
	out.PlannedStart = clonePtr(t.PlannedStart)
	out.PlannedEnd = clonePtr(t.PlannedEnd)
	out.ActualStart = clonePtr(t.ActualStart)
	out.ActualEnd = clonePtr(t.ActualEnd)
	out.ActualDuration = clonePtr(t.ActualDuration)
	out.Notes = clonePtr(t.Notes)
	if t.Tags != nil {
		out.Tags = append([]string(nil), t.Tags...)
	}
	if t.DependsOn != nil {
		out.DependsOn = append([]int64(nil), t.DependsOn...)
	}
	out.DailyAllocations = t.DailyAllocations.Clone()
	out.ActualDailyHours = t.ActualDailyHours.Clone()
	return &out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Finished reports whether the task is in a terminal state.
func (t *Task) Finished() bool {
	return t.Status.Finished()
}

// HasPlannedPeriod reports whether both planned bounds are set.
func (t *Task) HasPlannedPeriod() bool {
	return t.PlannedStart != nil && t.PlannedEnd != nil
}

// HasAllocations reports whether the task carries any planned daily hours.
func (t *Task) HasAllocations() bool {
	return len(t.DailyAllocations) > 0
}

// Start transitions the task to in_progress. The first start records
// actual_start; every start clears actual_end so a restarted task is no
// longer considered ended. Finished tasks cannot be started.
func (t *Task) Start(now time.Time) error {
	if t.Finished() {
		return ErrTaskFinished
	}
	t.Status = TaskStatusInProgress
	if t.ActualStart == nil {
		start := now
		t.ActualStart = &start
	}
	t.ActualEnd = nil
	return nil
}

// Complete transitions the task to completed and stamps actual_end.
// actual_start stays absent for tasks completed without ever starting.
func (t *Task) Complete(now time.Time) error {
	if t.Finished() {
		return ErrTaskFinished
	}
	t.Status = TaskStatusCompleted
	end := now
	t.ActualEnd = &end
	t.RecomputeActualDuration()
	return nil
}

// Cancel transitions the task to canceled and stamps actual_end.
func (t *Task) Cancel(now time.Time) error {
	if t.Finished() {
		return ErrTaskFinished
	}
	t.Status = TaskStatusCanceled
	end := now
	t.ActualEnd = &end
	return nil
}

// Reopen reverts the task to pending from any state. Recorded actual
// timestamps are kept as history.
func (t *Task) Reopen() {
	t.Status = TaskStatusPending
}

// RecomputeActualDuration derives actual_duration from logged daily hours,
// falling back to the wall-clock span between actual_start and actual_end.
// It clears the field when neither source is available.
func (t *Task) RecomputeActualDuration() {
	if len(t.ActualDailyHours) > 0 {
		total := t.ActualDailyHours.Total()
		t.ActualDuration = &total
		return
	}
	if t.ActualStart != nil && t.ActualEnd != nil {
		hours := t.ActualEnd.Sub(*t.ActualStart).Hours()
		if hours < 0 {
			hours = 0
		}
		t.ActualDuration = &hours
		return
	}
	t.ActualDuration = nil
}
