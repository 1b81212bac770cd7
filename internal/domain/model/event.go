//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

// EventType identifies a broadcast event kind.
type EventType string

const (
	EventTaskCreated       EventType = "task_created"
	EventTaskUpdated       EventType = "task_updated"
	EventTaskDeleted       EventType = "task_deleted"
	EventTaskStatusChanged EventType = "task_status_changed"
	EventTaskNotesUpdated  EventType = "task_notes_updated"
	EventScheduleOptimized EventType = "schedule_optimized"
)

// Event is the envelope broadcast to WebSocket clients and webhook sinks.
// Event-specific fields are only populated for their event type.
type Event struct {
	Type           EventType   `json:"type"`
	TaskID         *int64      `json:"task_id,omitempty"`
	TaskName       string      `json:"task_name,omitempty"`
	UpdatedFields  []string    `json:"updated_fields,omitempty"`
	OldStatus      *TaskStatus `json:"old_status,omitempty"`
	NewStatus      *TaskStatus `json:"new_status,omitempty"`
	ScheduledCount *int        `json:"scheduled_count,omitempty"`
	FailedCount    *int        `json:"failed_count,omitempty"`
	Algorithm      string      `json:"algorithm,omitempty"`
	SourceUserName *string     `json:"source_user_name"`
}

func taskEvent(eventType EventType, task *Task, source *string) Event {
	id := task.ID
	return Event{
		Type:           eventType,
		TaskID:         &id,
		TaskName:       task.Name,
		SourceUserName: source,
	}
}

// NewTaskCreated builds the event emitted after a successful create.
func NewTaskCreated(task *Task, source *string) Event {
	return taskEvent(EventTaskCreated, task, source)
}

// NewTaskUpdated builds the event emitted after a successful update,
// carrying the names of the changed fields.
func NewTaskUpdated(task *Task, fields []string, source *string) Event {
	e := taskEvent(EventTaskUpdated, task, source)
	e.UpdatedFields = fields
	return e
}

// NewTaskDeleted builds the event emitted after a hard delete.
func NewTaskDeleted(task *Task, source *string) Event {
	return taskEvent(EventTaskDeleted, task, source)
}

// NewTaskStatusChanged builds the event emitted after a lifecycle
// transition, carrying the previous and current status.
func NewTaskStatusChanged(task *Task, oldStatus TaskStatus, source *string) Event {
	e := taskEvent(EventTaskStatusChanged, task, source)
	old := oldStatus
	current := task.Status
	e.OldStatus = &old
	e.NewStatus = &current
	return e
}

// NewTaskNotesUpdated builds the event emitted when an external notes
// collaborator reports a change. Note content itself is not stored here.
func NewTaskNotesUpdated(task *Task, source *string) Event {
	return taskEvent(EventTaskNotesUpdated, task, source)
}

// NewScheduleOptimized builds the event emitted after an optimization run.
// It is not tied to a single task, so the task fields stay empty.
func NewScheduleOptimized(scheduled, failed int, algorithm string, source *string) Event {
	return Event{
		Type:           EventScheduleOptimized,
		ScheduledCount: &scheduled,
		FailedCount:    &failed,
		Algorithm:      algorithm,
		SourceUserName: source,
	}
}
