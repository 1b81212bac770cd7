package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/taskdog/taskdog/internal/domain/auth"
	"github.com/taskdog/taskdog/internal/domain/model"
	"github.com/taskdog/taskdog/internal/domain/validate"
	apperrors "github.com/taskdog/taskdog/internal/errors"
)

// Lifecycle transitions. Each is a dedicated endpoint rather than a status
// PATCH so the gates stay explicit: starting requires every dependency to be
// completed, finishing requires the task to have been started, and nothing
// moves a finished task except reopen.

// Start transitions the task to in_progress. The first start stamps
// actual_start. Every dependency must exist and be completed.
func (s *TaskService) Start(ctx context.Context, id int64) (*model.Task, error) {
	return s.transition(ctx, id, model.AuditOpStartTask, func(task *model.Task) error {
		if task.Finished() {
			return apperrors.TaskAlreadyFinished(task.ID, string(task.Status))
		}
		if err := validate.DependenciesMet(ctx, task, s.repo); err != nil {
			return err
		}
		return task.Start(s.clock.Now())
	})
}

// Complete transitions the task to completed and stamps actual_end. A
// pending task that was never started cannot be completed.
func (s *TaskService) Complete(ctx context.Context, id int64) (*model.Task, error) {
	return s.transition(ctx, id, model.AuditOpCompleteTask, func(task *model.Task) error {
		if err := s.finishGate(task); err != nil {
			return err
		}
		return task.Complete(s.clock.Now())
	})
}

// Cancel transitions the task to canceled and stamps actual_end. The same
// not-started gate as Complete applies.
func (s *TaskService) Cancel(ctx context.Context, id int64) (*model.Task, error) {
	return s.transition(ctx, id, model.AuditOpCancelTask, func(task *model.Task) error {
		if err := s.finishGate(task); err != nil {
			return err
		}
		return task.Cancel(s.clock.Now())
	})
}

// Reopen reverts the task to pending from any state, keeping recorded
// actual timestamps as history.
func (s *TaskService) Reopen(ctx context.Context, id int64) (*model.Task, error) {
	return s.transition(ctx, id, model.AuditOpReopenTask, func(task *model.Task) error {
		task.Reopen()
		return nil
	})
}

func (s *TaskService) finishGate(task *model.Task) error {
	if task.Finished() {
		return apperrors.TaskAlreadyFinished(task.ID, string(task.Status))
	}
	if task.Status == model.TaskStatusPending && task.ActualStart == nil {
		return apperrors.TaskNotStarted(task.ID)
	}
	return nil
}

// transition runs the shared lifecycle skeleton: load, gate, mutate a
// clone, persist, audit the status move, broadcast. A transition that
// leaves the status unchanged (reopening a pending task, starting an
// in_progress one) returns the task untouched without persisting.
func (s *TaskService) transition(ctx context.Context, id int64, op string, mutate func(*model.Task) error) (*model.Task, error) {
	defer s.locks.lock(id).Unlock()

	task, err := s.loadTask(ctx, id)
	if err != nil {
		s.audit.failure(ctx, op, &id, "", nil, err)
		return nil, err
	}

	updated := task.Clone()
	if err := mutate(updated); err != nil {
		err = transitionError(task, err)
		s.audit.failure(ctx, op, &id, task.Name, nil, err)
		return nil, err
	}
	if updated.Status == task.Status {
		return task, nil
	}

	if err := s.repo.Save(ctx, updated); err != nil {
		err = fmt.Errorf("save task %d: %w", id, err)
		s.audit.failure(ctx, op, &id, task.Name, nil, err)
		return nil, err
	}

	s.audit.success(ctx, op, updated,
		map[string]any{model.FieldStatus: string(task.Status)},
		map[string]any{model.FieldStatus: string(updated.Status)})
	s.afterWrite(ctx, model.NewTaskStatusChanged(updated, task.Status, auth.ActorSource(ctx)))

	if s.logger != nil {
		s.logger.InfoContext(ctx, "task status changed",
			"task_id", id, "from", task.Status, "to", updated.Status)
	}
	return updated, nil
}

// transitionError converts the model's finished sentinel into the coded
// error the HTTP layer maps to a conflict.
func transitionError(task *model.Task, err error) error {
	if errors.Is(err, model.ErrTaskFinished) {
		return apperrors.TaskAlreadyFinished(task.ID, string(task.Status))
	}
	return err
}
