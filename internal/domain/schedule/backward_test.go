package schedule

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdog/taskdog/internal/domain/model"
)

func runBackward(t *testing.T, tasks []*model.Task, grid Grid, p Params) Result {
	t.Helper()
	s, err := New(AlgorithmBackward)
	require.NoError(t, err)
	return s.Run(context.Background(), tasks, grid, p)
}

func TestBackward_JustInTimeOnTheDeadlineDay(t *testing.T) {
	task := testTask(1, 6)
	task.Deadline = deadlineAt("2025-10-24")

	res := runBackward(t, []*model.Task{task}, Grid{}, testParams())

	require.Len(t, res.Scheduled, 1)
	got := res.Scheduled[0]
	assert.Equal(t, model.HoursByDate{"2025-10-24": 6}, got.DailyAllocations)
	assert.Equal(t, at("2025-10-24", 9), *got.PlannedStart)
	assert.Equal(t, at("2025-10-24", 18), *got.PlannedEnd)
}

func TestBackward_FillsDaysBeforeTheDeadline(t *testing.T) {
	task := testTask(1, 12)
	task.Deadline = deadlineAt("2025-10-24")

	res := runBackward(t, []*model.Task{task}, Grid{}, testParams())

	require.Len(t, res.Scheduled, 1)
	got := res.Scheduled[0]
	assert.Equal(t, model.HoursByDate{"2025-10-23": 6, "2025-10-24": 6}, got.DailyAllocations)
	assert.Equal(t, at("2025-10-23", 9), *got.PlannedStart)
	assert.Equal(t, at("2025-10-24", 18), *got.PlannedEnd)
}

func TestBackward_SkipsWeekendWalkingBack(t *testing.T) {
	task := testTask(1, 12)
	task.Deadline = deadlineAt("2025-10-27") // Monday

	res := runBackward(t, []*model.Task{task}, Grid{}, testParams())

	require.Len(t, res.Scheduled, 1)
	assert.Equal(t, model.HoursByDate{"2025-10-24": 6, "2025-10-27": 6}, res.Scheduled[0].DailyAllocations)
}

func TestBackward_FailsWhenWorkWouldStartBeforeStartDate(t *testing.T) {
	task := testTask(1, 30)
	task.Deadline = deadlineAt("2025-10-22")
	grid := Grid{}

	res := runBackward(t, []*model.Task{task}, grid, testParams())

	assert.Empty(t, res.Scheduled)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, reasonBeforeStart, res.Failed[0].Reason)
	assert.Empty(t, grid)
}

func TestBackward_DefaultsMissingDeadlineToAWeekOut(t *testing.T) {
	task := testTask(1, 6)

	res := runBackward(t, []*model.Task{task}, Grid{}, testParams())

	require.Len(t, res.Scheduled, 1)
	assert.Equal(t, model.HoursByDate{"2025-10-27": 6}, res.Scheduled[0].DailyAllocations)
}

func TestBackward_LatestDeadlineAllocatedFirst(t *testing.T) {
	near := testTask(1, 6)
	near.Deadline = deadlineAt("2025-10-22")
	far := testTask(2, 6)
	far.Deadline = deadlineAt("2025-10-24")

	res := runBackward(t, []*model.Task{near, far}, Grid{}, testParams())

	require.Len(t, res.Scheduled, 2)
	byID := scheduledByID(res)
	assert.Equal(t, model.HoursByDate{"2025-10-24": 6}, byID[2].DailyAllocations)
	assert.Equal(t, model.HoursByDate{"2025-10-22": 6}, byID[1].DailyAllocations)
}

func TestBackward_TinyEstimateStillGetsADay(t *testing.T) {
	task := testTask(1, 1e-10)
	task.Deadline = deadlineAt("2025-10-24")

	res := runBackward(t, []*model.Task{task}, Grid{}, testParams())

	require.Len(t, res.Scheduled, 1)
	require.Empty(t, res.Failed)
	got := res.Scheduled[0]
	require.NotNil(t, got.PlannedStart)
	require.NotNil(t, got.PlannedEnd)
	assert.Equal(t, at("2025-10-24", 9), *got.PlannedStart)
	assert.Equal(t, at("2025-10-24", 18), *got.PlannedEnd)
	assert.Len(t, got.DailyAllocations, 1)
}
