// Package testutil provides testing utilities and helpers for the taskdog service.
package testutil

import (
	"fmt"
	"time"

	"github.com/taskdog/taskdog/internal/domain/model"
)

// TaskBuilder provides a fluent interface for building Task objects for testing.
type TaskBuilder struct {
	task *model.Task
}

// NewTask creates a new TaskBuilder with sensible defaults.
func NewTask(id int64) *TaskBuilder {
	return &TaskBuilder{
		task: &model.Task{
			ID:     id,
			Name:   fmt.Sprintf("task-%d", id),
			Status: model.TaskStatusPending,
		},
	}
}

// WithName sets the task name.
func (b *TaskBuilder) WithName(name string) *TaskBuilder {
	b.task.Name = name
	return b
}

// WithPriority sets the task priority.
func (b *TaskBuilder) WithPriority(priority int) *TaskBuilder {
	b.task.Priority = &priority
	return b
}

// WithEstimate sets the estimated duration in hours.
func (b *TaskBuilder) WithEstimate(hours float64) *TaskBuilder {
	b.task.EstimatedDuration = &hours
	return b
}

// WithDeadline sets the deadline.
func (b *TaskBuilder) WithDeadline(deadline time.Time) *TaskBuilder {
	b.task.Deadline = &deadline
	return b
}

// WithStatus sets the lifecycle status.
func (b *TaskBuilder) WithStatus(status model.TaskStatus) *TaskBuilder {
	b.task.Status = status
	return b
}

// WithPlannedPeriod sets both planned bounds.
func (b *TaskBuilder) WithPlannedPeriod(start, end time.Time) *TaskBuilder {
	b.task.PlannedStart = &start
	b.task.PlannedEnd = &end
	return b
}

// WithActualStart sets the recorded start time.
func (b *TaskBuilder) WithActualStart(start time.Time) *TaskBuilder {
	b.task.ActualStart = &start
	return b
}

// WithActualEnd sets the recorded end time.
func (b *TaskBuilder) WithActualEnd(end time.Time) *TaskBuilder {
	b.task.ActualEnd = &end
	return b
}

// WithNotes sets the notes text.
func (b *TaskBuilder) WithNotes(notes string) *TaskBuilder {
	b.task.Notes = &notes
	return b
}

// Fixed marks the task as excluded from schedule optimization.
func (b *TaskBuilder) Fixed() *TaskBuilder {
	b.task.IsFixed = true
	return b
}

// Archived marks the task as archived.
func (b *TaskBuilder) Archived() *TaskBuilder {
	b.task.IsArchived = true
	return b
}

// WithTags sets the tag list.
func (b *TaskBuilder) WithTags(tags ...string) *TaskBuilder {
	b.task.Tags = tags
	return b
}

// WithDependsOn sets the dependency ids.
func (b *TaskBuilder) WithDependsOn(ids ...int64) *TaskBuilder {
	b.task.DependsOn = ids
	return b
}

// WithAllocations sets the planned daily hours.
func (b *TaskBuilder) WithAllocations(hours model.HoursByDate) *TaskBuilder {
	b.task.DailyAllocations = hours
	return b
}

// WithActualDailyHours sets the logged daily hours.
func (b *TaskBuilder) WithActualDailyHours(hours model.HoursByDate) *TaskBuilder {
	b.task.ActualDailyHours = hours
	return b
}

// Build returns the constructed Task.
func (b *TaskBuilder) Build() *model.Task {
	return b.task
}

// CreateTaskRequestBuilder provides a fluent interface for building
// CreateTaskRequest objects for testing.
type CreateTaskRequestBuilder struct {
	req *model.CreateTaskRequest
}

// NewCreateTaskRequest creates a new CreateTaskRequestBuilder with sensible defaults.
func NewCreateTaskRequest() *CreateTaskRequestBuilder {
	return &CreateTaskRequestBuilder{
		req: &model.CreateTaskRequest{
			Name: "test task",
		},
	}
}

// WithName sets the task name.
func (b *CreateTaskRequestBuilder) WithName(name string) *CreateTaskRequestBuilder {
	b.req.Name = name
	return b
}

// WithPriority sets the priority.
func (b *CreateTaskRequestBuilder) WithPriority(priority int) *CreateTaskRequestBuilder {
	b.req.Priority = &priority
	return b
}

// WithEstimate sets the estimated duration in hours.
func (b *CreateTaskRequestBuilder) WithEstimate(hours float64) *CreateTaskRequestBuilder {
	b.req.EstimatedDuration = &hours
	return b
}

// WithDeadline sets the deadline.
func (b *CreateTaskRequestBuilder) WithDeadline(deadline time.Time) *CreateTaskRequestBuilder {
	b.req.Deadline = &deadline
	return b
}

// WithPlannedPeriod sets both planned bounds.
func (b *CreateTaskRequestBuilder) WithPlannedPeriod(start, end time.Time) *CreateTaskRequestBuilder {
	b.req.PlannedStart = &start
	b.req.PlannedEnd = &end
	return b
}

// Fixed marks the request as creating a fixed task.
func (b *CreateTaskRequestBuilder) Fixed() *CreateTaskRequestBuilder {
	b.req.IsFixed = true
	return b
}

// WithNotes sets the notes text.
func (b *CreateTaskRequestBuilder) WithNotes(notes string) *CreateTaskRequestBuilder {
	b.req.Notes = &notes
	return b
}

// WithTags sets the tag list.
func (b *CreateTaskRequestBuilder) WithTags(tags ...string) *CreateTaskRequestBuilder {
	b.req.Tags = tags
	return b
}

// WithDependsOn sets the dependency ids.
func (b *CreateTaskRequestBuilder) WithDependsOn(ids ...int64) *CreateTaskRequestBuilder {
	b.req.DependsOn = ids
	return b
}

// Build returns the constructed CreateTaskRequest.
func (b *CreateTaskRequestBuilder) Build() *model.CreateTaskRequest {
	return b.req
}
