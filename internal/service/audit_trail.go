package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/taskdog/taskdog/internal/core"
	"github.com/taskdog/taskdog/internal/domain/auth"
	"github.com/taskdog/taskdog/internal/domain/model"
	obserrors "github.com/taskdog/taskdog/internal/observability/errors"
	"github.com/taskdog/taskdog/internal/observability/notify"
	"github.com/taskdog/taskdog/internal/observability/statsd"
	"github.com/taskdog/taskdog/internal/service/failurenotifier"
)

// auditTrail persists audit entries for task writes. Every mutating
// operation records an entry, including attempts rejected by validation.
// Recording must never fail the operation it describes: Append errors are
// logged, counted, and forwarded to the failure notifier instead of being
// returned to the caller.
type auditTrail struct {
	repo     core.AuditLogRepository
	logger   *slog.Logger
	metrics  statsd.Sink
	notifier *failurenotifier.Service
}

// record stores one entry. The client name is resolved from the request
// context when the caller did not set it. A nil trail or nil repository is a
// no-op so services can run without auditing in tests.
func (a *auditTrail) record(ctx context.Context, entry model.AuditEntry) {
	if a == nil || a.repo == nil {
		return
	}
	if entry.ClientName == "" {
		entry.ClientName = auth.ActorName(ctx)
	}
	if err := a.repo.Append(ctx, &entry); err != nil {
		if a.logger != nil {
			a.logger.ErrorContext(ctx, "failed to append audit entry",
				"operation", entry.Operation,
				"task_id", entry.TaskID,
				"error", err,
			)
		}
		if a.metrics != nil {
			a.metrics.Count("audit.append_errors", 1, map[string]string{
				"operation": entry.Operation,
			})
		}
		a.notifyAppendFailure(ctx, entry, err)
	}
}

// success records a completed write. OldValues and NewValues carry the
// per-operation snapshots described in the API contract.
func (a *auditTrail) success(ctx context.Context, op string, task *model.Task, oldValues, newValues map[string]any) {
	entry := model.AuditEntry{
		Operation: op,
		OldValues: oldValues,
		NewValues: newValues,
		Success:   true,
	}
	if task != nil {
		id := task.ID
		entry.TaskID = &id
		entry.TaskName = task.Name
	}
	a.record(ctx, entry)
}

// failure records a rejected write. Requested values land in NewValues so
// the trail shows what the client asked for.
func (a *auditTrail) failure(ctx context.Context, op string, taskID *int64, taskName string, requested map[string]any, cause error) {
	entry := model.AuditEntry{
		Operation: op,
		TaskID:    taskID,
		TaskName:  taskName,
		NewValues: requested,
		Success:   false,
	}
	if cause != nil {
		entry.ErrorMessage = cause.Error()
	}
	a.record(ctx, entry)
}

func (a *auditTrail) notifyAppendFailure(ctx context.Context, entry model.AuditEntry, cause error) {
	if a.notifier == nil || !a.notifier.Enabled() {
		return
	}
	a.notifier.NotifyFailure(ctx, notify.FailurePayload{
		Component:  "audit_trail",
		Operation:  entry.Operation,
		TaskID:     entry.TaskID,
		Subject:    entry.TaskName,
		Error:      cause.Error(),
		ErrorClass: obserrors.Classify(cause),
		OccurredAt: time.Now(),
	})
}

// taskFieldValues extracts the named fields from a task into an audit value
// map. Nil pointers become nil values so cleared fields stay visible in the
// trail.
func taskFieldValues(task *model.Task, fields ...string) map[string]any {
	if task == nil || len(fields) == 0 {
		return nil
	}
	values := make(map[string]any, len(fields))
	for _, field := range fields {
		switch field {
		case model.FieldName:
			values[field] = task.Name
		case model.FieldPriority:
			values[field] = derefValue(task.Priority)
		case model.FieldEstimatedDuration:
			values[field] = derefValue(task.EstimatedDuration)
		case model.FieldDeadline:
			values[field] = derefValue(task.Deadline)
		case model.FieldPlannedStart:
			values[field] = derefValue(task.PlannedStart)
		case model.FieldPlannedEnd:
			values[field] = derefValue(task.PlannedEnd)
		case model.FieldIsFixed:
			values[field] = task.IsFixed
		case model.FieldStatus:
			values[field] = string(task.Status)
		case model.FieldNotes:
			values[field] = derefValue(task.Notes)
		case model.FieldTags:
			values[field] = task.Tags
		case model.FieldDependsOn:
			values[field] = task.DependsOn
		case model.FieldIsArchived:
			values[field] = task.IsArchived
		}
	}
	return values
}

// auditSnapshotFields is the field set recorded for whole-task snapshots
// (create and delete entries).
var auditSnapshotFields = []string{
	model.FieldName,
	model.FieldPriority,
	model.FieldEstimatedDuration,
	model.FieldDeadline,
	model.FieldPlannedStart,
	model.FieldPlannedEnd,
	model.FieldIsFixed,
	model.FieldStatus,
	model.FieldNotes,
	model.FieldTags,
	model.FieldDependsOn,
	model.FieldIsArchived,
}

// taskSnapshot returns the full-task audit value map.
func taskSnapshot(task *model.Task) map[string]any {
	return taskFieldValues(task, auditSnapshotFields...)
}

func derefValue[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
