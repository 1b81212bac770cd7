package httpx

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/taskdog/taskdog/internal/domain/model"
	"github.com/taskdog/taskdog/internal/service"
)

func TestOptimizeHandlers_Run_NoCandidates(t *testing.T) {
	t.Parallel()
	f := newRouterFixture(t)

	f.tasks.EXPECT().GetAll(gomock.Any()).Return([]*model.Task{}, nil)

	rec := f.do(t, http.MethodPost, "/api/v1/optimize", map[string]any{})

	require.Equal(t, http.StatusOK, rec.Code)
	var result service.OptimizeResult
	decodeBody(t, rec, &result)
	assert.Equal(t, "greedy", result.Algorithm)
	assert.Zero(t, result.ScheduledCount)
	assert.Zero(t, result.FailedCount)
}

func TestOptimizeHandlers_Run_SchedulesEstimatedTasks(t *testing.T) {
	t.Parallel()
	f := newRouterFixture(t)

	estimate := 4.0
	task := sampleTask(1, "plan me")
	task.EstimatedDuration = &estimate

	f.tasks.EXPECT().GetAll(gomock.Any()).Return([]*model.Task{task}, nil)
	f.tasks.EXPECT().SaveAll(gomock.Any(), gomock.Any()).Return(nil)

	rec := f.do(t, http.MethodPost, "/api/v1/optimize", map[string]any{
		"algorithm":  "greedy",
		"start_date": "2025-03-10",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var result service.OptimizeResult
	decodeBody(t, rec, &result)
	assert.Equal(t, 1, result.ScheduledCount)
	require.Len(t, result.Scheduled, 1)
	assert.NotEmpty(t, result.Scheduled[0].DailyAllocations)
}

func TestOptimizeHandlers_Run_UnknownAlgorithmIsUnprocessable(t *testing.T) {
	t.Parallel()
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/optimize", map[string]any{
		"algorithm": "clairvoyant",
	})

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body errorBody
	decodeBody(t, rec, &body)
	assert.Equal(t, "algorithm", body.Field)
}

func TestOptimizeHandlers_Run_UnknownTaskIDIsUnprocessable(t *testing.T) {
	t.Parallel()
	f := newRouterFixture(t)

	f.tasks.EXPECT().GetAll(gomock.Any()).Return([]*model.Task{sampleTask(1, "only")}, nil)

	rec := f.do(t, http.MethodPost, "/api/v1/optimize", map[string]any{
		"task_ids": []int64{99},
	})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
