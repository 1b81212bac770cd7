package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdog/taskdog/internal/domain/model"
)

// contendedTasks is a pair where the greedy priority order fails: the
// high-priority task grabs today, starving the low-priority one of its
// same-day deadline. The reversed order schedules both.
func contendedTasks() []*model.Task {
	big := testTask(1, 6)
	big.Priority = intPtr(100)
	urgent := testTask(2, 6)
	urgent.Priority = intPtr(10)
	urgent.Deadline = deadlineAt("2025-10-20")
	return []*model.Task{big, urgent}
}

func TestMonteCarlo_FindsAnOrderGreedyMisses(t *testing.T) {
	tasks := contendedTasks()

	greedy, err := New(AlgorithmGreedy)
	require.NoError(t, err)
	greedyRes := greedy.Run(context.Background(), tasks, Grid{}, testParams())
	require.Len(t, greedyRes.Failed, 1, "fixture must defeat the greedy order")

	p := testParams()
	p.Trials = 64
	p.Seed = 1
	mc, err := New(AlgorithmMonteCarlo)
	require.NoError(t, err)
	res := mc.Run(context.Background(), tasks, Grid{}, p)

	assert.Len(t, res.Scheduled, 2)
	assert.Empty(t, res.Failed)
	byID := scheduledByID(res)
	assert.Equal(t, model.HoursByDate{"2025-10-20": 6}, byID[2].DailyAllocations)
	assert.Equal(t, model.HoursByDate{"2025-10-21": 6}, byID[1].DailyAllocations)
}

func TestMonteCarlo_DeterministicForAFixedSeed(t *testing.T) {
	p := testParams()
	p.Trials = 32
	p.Seed = 42

	run := func() Result {
		tasks := []*model.Task{testTask(1, 9), testTask(2, 4), testTask(3, 7)}
		s, err := New(AlgorithmMonteCarlo)
		require.NoError(t, err)
		return s.Run(context.Background(), tasks, Grid{}, p)
	}
	first := run()
	second := run()

	require.Equal(t, len(first.Scheduled), len(second.Scheduled))
	firstByID := scheduledByID(first)
	for _, got := range second.Scheduled {
		assert.Equal(t, firstByID[got.ID].DailyAllocations, got.DailyAllocations)
	}
}

func TestMonteCarlo_AdvancesTheCallersGrid(t *testing.T) {
	grid := Grid{}
	p := testParams()
	p.Trials = 8
	p.Seed = 7

	s, err := New(AlgorithmMonteCarlo)
	require.NoError(t, err)
	res := s.Run(context.Background(), []*model.Task{testTask(1, 12)}, grid, p)

	require.Len(t, res.Scheduled, 1)
	assert.InDelta(t, 6, grid.Hours("2025-10-20"), 1e-9)
	assert.InDelta(t, 6, grid.Hours("2025-10-21"), 1e-9)
}

func TestMonteCarlo_ExhaustedBudgetStillReturnsAPlan(t *testing.T) {
	p := testParams()
	p.TimeBudget = time.Nanosecond
	p.Seed = 1

	s, err := New(AlgorithmMonteCarlo)
	require.NoError(t, err)
	res := s.Run(context.Background(), []*model.Task{testTask(1, 6), testTask(2, 6)}, Grid{}, p)

	scheduled, failed := res.Counts()
	assert.Equal(t, 2, scheduled+failed)
	assert.Equal(t, 2, scheduled)
}

func TestMonteCarlo_CanceledContextStillReturnsAPlan(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, err := New(AlgorithmMonteCarlo)
	require.NoError(t, err)
	res := s.Run(ctx, []*model.Task{testTask(1, 6)}, Grid{}, testParams())

	assert.Len(t, res.Scheduled, 1)
}

func TestMonteCarlo_EmptyInput(t *testing.T) {
	s, err := New(AlgorithmMonteCarlo)
	require.NoError(t, err)
	res := s.Run(context.Background(), nil, Grid{}, testParams())

	assert.Empty(t, res.Scheduled)
	assert.Empty(t, res.Failed)
}
