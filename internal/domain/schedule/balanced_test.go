package schedule

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdog/taskdog/internal/domain/model"
)

func runBalanced(t *testing.T, tasks []*model.Task, grid Grid, p Params) Result {
	t.Helper()
	s, err := New(AlgorithmBalanced)
	require.NoError(t, err)
	return s.Run(context.Background(), tasks, grid, p)
}

func TestBalanced_SpreadsEvenlyToTheDeadline(t *testing.T) {
	task := testTask(1, 12)
	task.Deadline = deadlineAt("2025-10-23")

	res := runBalanced(t, []*model.Task{task}, Grid{}, testParams())

	require.Len(t, res.Scheduled, 1)
	got := res.Scheduled[0]
	assert.Equal(t, model.HoursByDate{
		"2025-10-20": 3, "2025-10-21": 3, "2025-10-22": 3, "2025-10-23": 3,
	}, got.DailyAllocations)
	assert.Equal(t, at("2025-10-20", 9), *got.PlannedStart)
	assert.Equal(t, at("2025-10-23", 18), *got.PlannedEnd)
}

func TestBalanced_DefaultWindowWithoutDeadline(t *testing.T) {
	task := testTask(1, 22)

	res := runBalanced(t, []*model.Task{task}, Grid{}, testParams())

	require.Len(t, res.Scheduled, 1)
	got := res.Scheduled[0]
	// Eleven workdays between 2025-10-20 and 2025-11-03 inclusive.
	assert.Len(t, got.DailyAllocations, 11)
	assert.InDelta(t, 2, got.DailyAllocations["2025-10-24"], 1e-9)
	assert.NotContains(t, got.DailyAllocations, model.Date("2025-10-25"))
	assert.Equal(t, at("2025-11-03", 18), *got.PlannedEnd)
}

func TestBalanced_FallsThroughToGreedyOnBusyDay(t *testing.T) {
	task := testTask(1, 8)
	task.Deadline = deadlineAt("2025-10-23")
	grid := Grid{"2025-10-21": 6}

	res := runBalanced(t, []*model.Task{task}, grid, testParams())

	require.Len(t, res.Scheduled, 1)
	// The even spread of 2h/day collides with the booked Tuesday, so the
	// task front-loads instead.
	assert.Equal(t, model.HoursByDate{"2025-10-20": 6, "2025-10-22": 2}, res.Scheduled[0].DailyAllocations)
}

func TestBalanced_FallsThroughWhenShareExceedsDailyCap(t *testing.T) {
	task := testTask(1, 16)
	task.Deadline = deadlineAt("2025-10-21")

	res := runBalanced(t, []*model.Task{task}, Grid{}, testParams())

	// 8h/day over two days exceeds the cap, and greedy cannot fit 16h by
	// the deadline either.
	assert.Empty(t, res.Scheduled)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, reasonDeadline, res.Failed[0].Reason)
}

func TestBalanced_HigherPriorityClaimsCapacityFirst(t *testing.T) {
	first := testTask(1, 4)
	first.Priority = intPtr(100)
	first.Deadline = deadlineAt("2025-10-21")
	second := testTask(2, 8)
	second.Priority = intPtr(10)
	second.Deadline = deadlineAt("2025-10-21")

	res := runBalanced(t, []*model.Task{first, second}, Grid{}, testParams())

	require.Len(t, res.Scheduled, 2)
	byID := scheduledByID(res)
	assert.Equal(t, model.HoursByDate{"2025-10-20": 2, "2025-10-21": 2}, byID[1].DailyAllocations)
	// The rest fits exactly into what the first task left behind.
	assert.Equal(t, model.HoursByDate{"2025-10-20": 4, "2025-10-21": 4}, byID[2].DailyAllocations)
}
