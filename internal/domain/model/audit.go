//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import "time"

// Audit operations recorded for controller writes.
const (
	AuditOpCreateTask       = "create_task"
	AuditOpUpdateTask       = "update_task"
	AuditOpDeleteTask       = "delete_task"
	AuditOpStartTask        = "start_task"
	AuditOpCompleteTask     = "complete_task"
	AuditOpCancelTask       = "cancel_task"
	AuditOpReopenTask       = "reopen_task"
	AuditOpArchiveTask      = "archive_task"
	AuditOpRestoreTask      = "restore_task"
	AuditOpLogHours         = "log_hours"
	AuditOpOptimizeSchedule = "optimize_schedule"
)

// AuditEntry is one persisted audit-trail record. Failed writes are recorded
// too, with Success false and the error message attached.
type AuditEntry struct {
	ID           int64          `json:"id"            db:"id"`
	Timestamp    time.Time      `json:"timestamp"     db:"timestamp"`
	Operation    string         `json:"operation"     db:"operation"`
	TaskID       *int64         `json:"task_id,omitempty"       db:"task_id"`
	TaskName     string         `json:"task_name,omitempty"     db:"task_name"`
	ClientName   string         `json:"client_name,omitempty"   db:"client_name"`
	OldValues    map[string]any `json:"old_values,omitempty"    db:"old_values"`
	NewValues    map[string]any `json:"new_values,omitempty"    db:"new_values"`
	Success      bool           `json:"success"       db:"success"`
	ErrorMessage string         `json:"error_message,omitempty" db:"error_message"`
}

// AuditListOptions controls the newest-first audit feed.
// BeforeID is a cursor: only entries with a smaller id are returned.
type AuditListOptions struct {
	BeforeID  int64
	Limit     int
	TaskID    *int64
	Operation string
}

// AuditStats summarizes the audit trail for admin reporting.
type AuditStats struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}
