package validate

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/taskdog/taskdog/internal/domain/model"
	apperrors "github.com/taskdog/taskdog/internal/errors"
)

// TaskSource is the read side validators use for cross-task checks.
type TaskSource interface {
	GetAll(ctx context.Context) ([]*model.Task, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*model.Task, error)
}

// Validator checks one requested field change against the task being updated.
type Validator func(ctx context.Context, req *model.UpdateTaskRequest, task *model.Task, tasks TaskSource) error

// Registry dispatches field-level validators for task updates. Fields with no
// registered validator pass untouched, so new payload fields never block an
// update until a validator is registered for them.
type Registry struct {
	validators map[string]Validator
}

// NewRegistry builds the default registry covering status transitions,
// numeric bounds, tags, and dependency integrity.
func NewRegistry() *Registry {
	return &Registry{
		validators: map[string]Validator{
			model.FieldPriority:          validatePriority,
			model.FieldEstimatedDuration: validateEstimatedDuration,
			model.FieldStatus:            validateStatusTransition,
			model.FieldTags:              validateTags,
			model.FieldDependsOn:         validateDependsOn,
		},
	}
}

// ValidateFields runs the registered validator for every field present in the
// request. Fields are checked in the order they appear in the payload and the
// first failure stops the update.
func (r *Registry) ValidateFields(ctx context.Context, req *model.UpdateTaskRequest, task *model.Task, tasks TaskSource) error {
	for _, field := range req.Fields() {
		validator, ok := r.validators[field]
		if !ok {
			continue
		}
		if err := validator(ctx, req, task, tasks); err != nil {
			return err
		}
	}
	return nil
}

func validatePriority(_ context.Context, req *model.UpdateTaskRequest, _ *model.Task, _ TaskSource) error {
	if req.Priority != nil && *req.Priority <= 0 {
		return apperrors.ValidationField(model.FieldPriority, "must be greater than zero")
	}
	return nil
}

func validateEstimatedDuration(_ context.Context, req *model.UpdateTaskRequest, _ *model.Task, _ TaskSource) error {
	if req.EstimatedDuration != nil && *req.EstimatedDuration <= 0 {
		return apperrors.ValidationField(model.FieldEstimatedDuration, "must be greater than zero")
	}
	return nil
}

// validateStatusTransition enforces the lifecycle state machine for updates
// that change status. Reverting to pending reopens the task and is always
// allowed; every other way out of a finished task is rejected.
func validateStatusTransition(ctx context.Context, req *model.UpdateTaskRequest, task *model.Task, tasks TaskSource) error {
	if req.Status == nil {
		return nil
	}
	target := *req.Status
	if target == task.Status {
		return nil
	}
	switch target {
	case model.TaskStatusPending:
		return nil
	case model.TaskStatusInProgress:
		if task.Status.Finished() {
			return apperrors.TaskAlreadyFinished(task.ID, string(task.Status))
		}
		return DependenciesMet(ctx, task, tasks)
	case model.TaskStatusCompleted, model.TaskStatusCanceled:
		if task.Status.Finished() {
			return apperrors.TaskAlreadyFinished(task.ID, string(task.Status))
		}
		if task.Status == model.TaskStatusPending && task.ActualStart == nil {
			return apperrors.TaskNotStarted(task.ID)
		}
		return nil
	default:
		return apperrors.ValidationField(model.FieldStatus, fmt.Sprintf("unsupported status %q", target))
	}
}

func validateTags(_ context.Context, req *model.UpdateTaskRequest, _ *model.Task, _ TaskSource) error {
	if err := model.ValidateTags(req.Tags); err != nil {
		var fieldErr *model.FieldError
		if errors.As(err, &fieldErr) {
			return apperrors.ValidationField(fieldErr.Field, fieldErr.Reason)
		}
		return apperrors.Validation(err.Error())
	}
	return nil
}

func validateDependsOn(ctx context.Context, req *model.UpdateTaskRequest, task *model.Task, tasks TaskSource) error {
	if req.Clears(model.FieldDependsOn) {
		return nil
	}
	return CheckDependencies(ctx, task.ID, req.DependsOn, tasks)
}

// DependenciesMet checks that every dependency of the task exists and is
// completed. Missing and unfinished dependencies are reported together so the
// caller sees the full set blocking a start.
func DependenciesMet(ctx context.Context, task *model.Task, tasks TaskSource) error {
	if len(task.DependsOn) == 0 {
		return nil
	}
	deps, err := tasks.GetByIDs(ctx, task.DependsOn)
	if err != nil {
		return err
	}
	seen := make(map[int64]bool, len(task.DependsOn))
	var unmet []int64
	for _, id := range task.DependsOn {
		if seen[id] {
			continue
		}
		seen[id] = true
		dep, ok := deps[id]
		if !ok || dep.Status != model.TaskStatusCompleted {
			unmet = append(unmet, id)
		}
	}
	if len(unmet) > 0 {
		slices.Sort(unmet)
		return apperrors.DependencyNotMet(task.ID, unmet)
	}
	return nil
}

// CheckDependencies validates a proposed dependency list: every id must name
// an existing task, a task cannot depend on itself, and the new edges must
// not close a dependency cycle. Pass zero as taskID for a task that has not
// been created yet; nothing depends on a new task, so it cannot complete a
// cycle.
func CheckDependencies(ctx context.Context, taskID int64, dependsOn []int64, tasks TaskSource) error {
	if len(dependsOn) == 0 {
		return nil
	}
	seen := make(map[int64]bool, len(dependsOn))
	ids := make([]int64, 0, len(dependsOn))
	for _, id := range dependsOn {
		if taskID != 0 && id == taskID {
			return apperrors.ValidationField(model.FieldDependsOn, "a task cannot depend on itself")
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	deps, err := tasks.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	var missing []int64
	for _, id := range ids {
		if _, ok := deps[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return apperrors.ValidationField(model.FieldDependsOn, fmt.Sprintf("unknown task ids %v", missing))
	}
	if taskID == 0 {
		return nil
	}
	return dependencyCycle(ctx, taskID, ids, tasks)
}

// dependencyCycle walks existing dependency edges starting from the proposed
// list. Reaching the task itself means the new list would close a cycle.
func dependencyCycle(ctx context.Context, taskID int64, dependsOn []int64, tasks TaskSource) error {
	all, err := tasks.GetAll(ctx)
	if err != nil {
		return err
	}
	edges := make(map[int64][]int64, len(all))
	for _, t := range all {
		edges[t.ID] = t.DependsOn
	}

	visited := make(map[int64]bool, len(edges))
	stack := append([]int64(nil), dependsOn...)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == taskID {
			return apperrors.ValidationField(model.FieldDependsOn, "dependency cycle detected")
		}
		if visited[id] {
			continue
		}
		visited[id] = true
		stack = append(stack, edges[id]...)
	}
	return nil
}
