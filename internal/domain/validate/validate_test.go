package validate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdog/taskdog/internal/domain/model"
	apperrors "github.com/taskdog/taskdog/internal/errors"
)

type fakeTaskSource struct {
	tasks map[int64]*model.Task
	err   error
}

func sourceOf(tasks ...*model.Task) *fakeTaskSource {
	m := make(map[int64]*model.Task, len(tasks))
	for _, task := range tasks {
		m[task.ID] = task
	}
	return &fakeTaskSource{tasks: m}
}

func (f *fakeTaskSource) GetAll(context.Context) ([]*model.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*model.Task, 0, len(f.tasks))
	for _, task := range f.tasks {
		out = append(out, task)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeTaskSource) GetByIDs(_ context.Context, ids []int64) (map[int64]*model.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[int64]*model.Task, len(ids))
	for _, id := range ids {
		if task, ok := f.tasks[id]; ok {
			out[id] = task
		}
	}
	return out, nil
}

func statusTask(id int64, status model.TaskStatus) *model.Task {
	return &model.Task{ID: id, Name: fmt.Sprintf("task-%d", id), Status: status}
}

func depTask(id int64, status model.TaskStatus, dependsOn ...int64) *model.Task {
	task := statusTask(id, status)
	task.DependsOn = dependsOn
	return task
}

func patchRequest(t *testing.T, body string) *model.UpdateTaskRequest {
	t.Helper()
	var req model.UpdateTaskRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return &req
}

func unmetIDs(t *testing.T, err error) []int64 {
	t.Helper()
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	ids, ok := appErr.Details["unmet_ids"].([]int64)
	require.True(t, ok, "details should carry unmet_ids")
	return ids
}

func TestValidateFieldsSkipsFieldsWithoutValidator(t *testing.T) {
	registry := NewRegistry()
	task := statusTask(1, model.TaskStatusCompleted)
	req := patchRequest(t, `{"name":"renamed","notes":"check invoices","deadline":"2025-12-01T18:00:00Z"}`)

	err := registry.ValidateFields(context.Background(), req, task, nil)

	require.NoError(t, err)
}

func TestValidateFieldsFirstFailureWins(t *testing.T) {
	registry := NewRegistry()
	task := statusTask(1, model.TaskStatusPending)
	req := patchRequest(t, `{"priority":0,"estimated_duration":-1}`)

	err := registry.ValidateFields(context.Background(), req, task, nil)

	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, model.FieldPriority, apperrors.GetField(err))
}

func TestValidatePriority(t *testing.T) {
	registry := NewRegistry()
	task := statusTask(1, model.TaskStatusPending)

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "positive", body: `{"priority":3}`, wantErr: false},
		{name: "zero", body: `{"priority":0}`, wantErr: true},
		{name: "negative", body: `{"priority":-2}`, wantErr: true},
		{name: "cleared", body: `{"priority":null}`, wantErr: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := registry.ValidateFields(context.Background(), patchRequest(t, tt.body), task, nil)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsValidation(err))
				assert.Equal(t, model.FieldPriority, apperrors.GetField(err))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestValidateEstimatedDuration(t *testing.T) {
	registry := NewRegistry()
	task := statusTask(1, model.TaskStatusPending)

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "positive", body: `{"estimated_duration":2.5}`, wantErr: false},
		{name: "zero", body: `{"estimated_duration":0}`, wantErr: true},
		{name: "negative", body: `{"estimated_duration":-0.5}`, wantErr: true},
		{name: "cleared", body: `{"estimated_duration":null}`, wantErr: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := registry.ValidateFields(context.Background(), patchRequest(t, tt.body), task, nil)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, model.FieldEstimatedDuration, apperrors.GetField(err))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestValidateStatusTransition(t *testing.T) {
	registry := NewRegistry()
	started := time.Date(2025, 10, 20, 9, 0, 0, 0, time.UTC)

	t.Run("same status is a no-op", func(t *testing.T) {
		task := statusTask(1, model.TaskStatusCompleted)
		err := registry.ValidateFields(context.Background(), patchRequest(t, `{"status":"completed"}`), task, nil)
		require.NoError(t, err)
	})

	t.Run("reverting to pending reopens a finished task", func(t *testing.T) {
		task := statusTask(1, model.TaskStatusCompleted)
		err := registry.ValidateFields(context.Background(), patchRequest(t, `{"status":"pending"}`), task, nil)
		require.NoError(t, err)
	})

	t.Run("starting a completed task fails", func(t *testing.T) {
		task := statusTask(1, model.TaskStatusCompleted)
		err := registry.ValidateFields(context.Background(), patchRequest(t, `{"status":"in_progress"}`), task, sourceOf())
		require.Error(t, err)
		assert.True(t, apperrors.IsAlreadyFinished(err))
	})

	t.Run("completing a canceled task fails", func(t *testing.T) {
		task := statusTask(1, model.TaskStatusCanceled)
		err := registry.ValidateFields(context.Background(), patchRequest(t, `{"status":"completed"}`), task, nil)
		require.Error(t, err)
		assert.True(t, apperrors.IsAlreadyFinished(err))
	})

	t.Run("completing a never-started pending task fails", func(t *testing.T) {
		task := statusTask(1, model.TaskStatusPending)
		err := registry.ValidateFields(context.Background(), patchRequest(t, `{"status":"completed"}`), task, nil)
		require.Error(t, err)
		assert.True(t, apperrors.IsNotStarted(err))
	})

	t.Run("canceling a never-started pending task fails", func(t *testing.T) {
		task := statusTask(1, model.TaskStatusPending)
		err := registry.ValidateFields(context.Background(), patchRequest(t, `{"status":"canceled"}`), task, nil)
		require.Error(t, err)
		assert.True(t, apperrors.IsNotStarted(err))
	})

	t.Run("completing a reopened task with a recorded start passes", func(t *testing.T) {
		task := statusTask(1, model.TaskStatusPending)
		task.ActualStart = &started
		err := registry.ValidateFields(context.Background(), patchRequest(t, `{"status":"completed"}`), task, nil)
		require.NoError(t, err)
	})

	t.Run("completing an in-progress task passes", func(t *testing.T) {
		task := statusTask(1, model.TaskStatusInProgress)
		err := registry.ValidateFields(context.Background(), patchRequest(t, `{"status":"completed"}`), task, nil)
		require.NoError(t, err)
	})

	t.Run("starting with an unfinished dependency fails", func(t *testing.T) {
		task := depTask(1, model.TaskStatusPending, 2, 3)
		source := sourceOf(statusTask(2, model.TaskStatusCompleted), statusTask(3, model.TaskStatusInProgress))
		err := registry.ValidateFields(context.Background(), patchRequest(t, `{"status":"in_progress"}`), task, source)
		require.Error(t, err)
		assert.True(t, apperrors.IsDependencyNotMet(err))
		assert.Equal(t, []int64{3}, unmetIDs(t, err))
	})

	t.Run("starting with a missing dependency fails", func(t *testing.T) {
		task := depTask(1, model.TaskStatusPending, 7)
		err := registry.ValidateFields(context.Background(), patchRequest(t, `{"status":"in_progress"}`), task, sourceOf())
		require.Error(t, err)
		assert.True(t, apperrors.IsDependencyNotMet(err))
		assert.Equal(t, []int64{7}, unmetIDs(t, err))
	})

	t.Run("starting with completed dependencies passes", func(t *testing.T) {
		task := depTask(1, model.TaskStatusPending, 2)
		source := sourceOf(statusTask(2, model.TaskStatusCompleted))
		err := registry.ValidateFields(context.Background(), patchRequest(t, `{"status":"in_progress"}`), task, source)
		require.NoError(t, err)
	})
}

func TestValidateTagsField(t *testing.T) {
	registry := NewRegistry()
	task := statusTask(1, model.TaskStatusPending)

	t.Run("valid tags pass", func(t *testing.T) {
		err := registry.ValidateFields(context.Background(), patchRequest(t, `{"tags":["work","q4-plan"]}`), task, nil)
		require.NoError(t, err)
	})

	t.Run("duplicate tags fail", func(t *testing.T) {
		err := registry.ValidateFields(context.Background(), patchRequest(t, `{"tags":["work","work"]}`), task, nil)
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
		assert.Equal(t, model.FieldTags, apperrors.GetField(err))
	})

	t.Run("invalid characters fail", func(t *testing.T) {
		err := registry.ValidateFields(context.Background(), patchRequest(t, `{"tags":["bad tag!"]}`), task, nil)
		require.Error(t, err)
		assert.Equal(t, model.FieldTags, apperrors.GetField(err))
	})
}

func TestValidateDependsOnField(t *testing.T) {
	registry := NewRegistry()

	t.Run("clearing dependencies skips the checks", func(t *testing.T) {
		task := depTask(1, model.TaskStatusPending, 2)
		source := &fakeTaskSource{err: errors.New("source should not be called")}
		err := registry.ValidateFields(context.Background(), patchRequest(t, `{"depends_on":null}`), task, source)
		require.NoError(t, err)
	})

	t.Run("new dependencies are checked against the repository", func(t *testing.T) {
		task := statusTask(1, model.TaskStatusPending)
		err := registry.ValidateFields(context.Background(), patchRequest(t, `{"depends_on":[9]}`), task, sourceOf())
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
		assert.Equal(t, model.FieldDependsOn, apperrors.GetField(err))
	})
}

func TestDependenciesMet(t *testing.T) {
	t.Run("no dependencies never touches the source", func(t *testing.T) {
		task := statusTask(1, model.TaskStatusPending)
		source := &fakeTaskSource{err: errors.New("source should not be called")}
		require.NoError(t, DependenciesMet(context.Background(), task, source))
	})

	t.Run("missing and unfinished dependencies are reported together", func(t *testing.T) {
		task := depTask(1, model.TaskStatusPending, 5, 2, 9)
		source := sourceOf(statusTask(2, model.TaskStatusPending), statusTask(5, model.TaskStatusCompleted))
		err := DependenciesMet(context.Background(), task, source)
		require.Error(t, err)
		assert.Equal(t, []int64{2, 9}, unmetIDs(t, err))
	})

	t.Run("duplicate ids are reported once", func(t *testing.T) {
		task := depTask(1, model.TaskStatusPending, 4, 4)
		err := DependenciesMet(context.Background(), task, sourceOf())
		require.Error(t, err)
		assert.Equal(t, []int64{4}, unmetIDs(t, err))
	})

	t.Run("source errors propagate", func(t *testing.T) {
		task := depTask(1, model.TaskStatusPending, 2)
		source := &fakeTaskSource{err: errors.New("connection reset")}
		err := DependenciesMet(context.Background(), task, source)
		require.ErrorContains(t, err, "connection reset")
	})
}

func TestCheckDependencies(t *testing.T) {
	t.Run("empty list passes", func(t *testing.T) {
		require.NoError(t, CheckDependencies(context.Background(), 1, nil, nil))
	})

	t.Run("self-dependency fails", func(t *testing.T) {
		err := CheckDependencies(context.Background(), 1, []int64{1}, nil)
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
		require.ErrorContains(t, err, "depend on itself")
	})

	t.Run("unknown ids are listed sorted", func(t *testing.T) {
		err := CheckDependencies(context.Background(), 1, []int64{9, 7}, sourceOf())
		require.Error(t, err)
		require.ErrorContains(t, err, "unknown task ids [7 9]")
	})

	t.Run("duplicates are tolerated", func(t *testing.T) {
		source := sourceOf(statusTask(2, model.TaskStatusCompleted))
		require.NoError(t, CheckDependencies(context.Background(), 1, []int64{2, 2}, source))
	})

	t.Run("new tasks skip the cycle walk", func(t *testing.T) {
		source := sourceOf(depTask(2, model.TaskStatusPending, 3), statusTask(3, model.TaskStatusPending))
		require.NoError(t, CheckDependencies(context.Background(), 0, []int64{2}, source))
	})

	t.Run("direct cycle is rejected", func(t *testing.T) {
		source := sourceOf(depTask(1, model.TaskStatusPending, 2), statusTask(2, model.TaskStatusPending))
		err := CheckDependencies(context.Background(), 2, []int64{1}, source)
		require.Error(t, err)
		require.ErrorContains(t, err, "dependency cycle")
	})

	t.Run("transitive cycle is rejected", func(t *testing.T) {
		source := sourceOf(
			depTask(1, model.TaskStatusPending, 2),
			depTask(2, model.TaskStatusPending, 3),
			statusTask(3, model.TaskStatusPending),
		)
		err := CheckDependencies(context.Background(), 3, []int64{1}, source)
		require.Error(t, err)
		require.ErrorContains(t, err, "dependency cycle")
	})

	t.Run("acyclic graph passes", func(t *testing.T) {
		source := sourceOf(
			statusTask(1, model.TaskStatusPending),
			depTask(2, model.TaskStatusPending, 3),
			statusTask(3, model.TaskStatusPending),
		)
		require.NoError(t, CheckDependencies(context.Background(), 1, []int64{2}, source))
	})

	t.Run("source errors propagate", func(t *testing.T) {
		source := &fakeTaskSource{err: errors.New("connection reset")}
		err := CheckDependencies(context.Background(), 1, []int64{2}, source)
		require.ErrorContains(t, err, "connection reset")
	})
}
