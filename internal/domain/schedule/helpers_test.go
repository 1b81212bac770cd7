package schedule

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/taskdog/taskdog/internal/domain/model"
)

// Fixtures share one calendar: work starts Monday 2025-10-20, days run
// 09:00 to 18:00, capacity six hours per day, no holidays unless a test
// injects them.
const testStart = model.Date("2025-10-20")

func testParams() Params {
	return Params{
		StartDate:      testStart,
		MaxHoursPerDay: 6,
		StartHour:      9,
		EndHour:        18,
		Location:       time.UTC,
	}
}

func testTask(id int64, estimate float64) *model.Task {
	return &model.Task{
		ID:                id,
		Name:              fmt.Sprintf("task-%d", id),
		Status:            model.TaskStatusPending,
		EstimatedDuration: hoursPtr(estimate),
	}
}

func hoursPtr(v float64) *float64 {
	return &v
}

func intPtr(v int) *int {
	return &v
}

func timePtr(t time.Time) *time.Time {
	return &t
}

// deadlineAt builds an end-of-workday deadline on the given date.
func deadlineAt(d model.Date) *time.Time {
	return timePtr(d.At(18, time.UTC))
}

func at(d model.Date, hour int) time.Time {
	return d.At(hour, time.UTC)
}

func scheduledByID(res Result) map[int64]*model.Task {
	out := make(map[int64]*model.Task, len(res.Scheduled))
	for _, t := range res.Scheduled {
		out[t.ID] = t
	}
	return out
}

func failureReasons(res Result) map[int64]string {
	out := make(map[int64]string, len(res.Failed))
	for _, f := range res.Failed {
		out[f.Task.ID] = f.Reason
	}
	return out
}

func newTestRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
