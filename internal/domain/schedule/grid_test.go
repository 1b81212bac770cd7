package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taskdog/taskdog/internal/domain/model"
)

func TestNewGrid_SumsAllocationsAcrossTasks(t *testing.T) {
	t1 := testTask(1, 6)
	t1.DailyAllocations = model.HoursByDate{"2025-10-20": 4, "2025-10-21": 2}
	t2 := testTask(2, 3)
	t2.DailyAllocations = model.HoursByDate{"2025-10-20": 1.5}
	t3 := testTask(3, 2)

	g := NewGrid([]*model.Task{t1, t2, t3})

	assert.InDelta(t, 5.5, g.Hours("2025-10-20"), 1e-9)
	assert.InDelta(t, 2, g.Hours("2025-10-21"), 1e-9)
	assert.Zero(t, g.Hours("2025-10-22"))
}

func TestGrid_SubtractRemovesEmptyDays(t *testing.T) {
	g := Grid{"2025-10-20": 4}
	g.Subtract("2025-10-20", 4)

	_, exists := g["2025-10-20"]
	assert.False(t, exists)
}

func TestGrid_RollbackRestoresPriorBookings(t *testing.T) {
	g := Grid{"2025-10-20": 4}
	alloc := model.HoursByDate{"2025-10-20": 2, "2025-10-21": 6}
	for d, h := range alloc {
		g.Add(d, h)
	}

	g.Rollback(alloc)

	assert.Equal(t, Grid{"2025-10-20": 4}, g)
}

func TestGrid_CloneIsIndependent(t *testing.T) {
	g := Grid{"2025-10-20": 4}
	c := g.Clone()
	c.Add("2025-10-20", 2)

	assert.InDelta(t, 4, g.Hours("2025-10-20"), 1e-9)
	assert.InDelta(t, 6, c.Hours("2025-10-20"), 1e-9)
}

func TestAvailableHours_SubtractsBookedHours(t *testing.T) {
	p := testParams().normalized()
	g := Grid{"2025-10-20": 4}

	assert.InDelta(t, 2, p.availableHours(g, "2025-10-20"), 1e-9)
	assert.InDelta(t, 6, p.availableHours(g, "2025-10-21"), 1e-9)
}

func TestAvailableHours_NeverNegative(t *testing.T) {
	p := testParams().normalized()
	g := Grid{"2025-10-20": 9}

	assert.Zero(t, p.availableHours(g, "2025-10-20"))
}

func TestAvailableHours_SameDayClampedToRemainingWorkday(t *testing.T) {
	p := testParams()
	p.CurrentTime = timePtr(at("2025-10-20", 15))
	p = p.normalized()
	g := Grid{}

	// Three wall-clock hours remain until 18:00.
	assert.InDelta(t, 3, p.availableHours(g, "2025-10-20"), 1e-9)
	// Other days keep the full capacity.
	assert.InDelta(t, 6, p.availableHours(g, "2025-10-21"), 1e-9)
}

func TestAvailableHours_SameDayAfterHoursIsZero(t *testing.T) {
	p := testParams()
	p.CurrentTime = timePtr(at("2025-10-20", 19))
	p = p.normalized()

	assert.Zero(t, p.availableHours(Grid{}, "2025-10-20"))
}
