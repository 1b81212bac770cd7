//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"sort"
	"time"
)

// GanttEntry is one task row in the gantt payload: the task's identity plus
// its per-day hours over the planned period.
type GanttEntry struct {
	TaskID       int64       `json:"task_id"`
	TaskName     string      `json:"task_name"`
	Status       TaskStatus  `json:"status"`
	PlannedStart *time.Time  `json:"planned_start,omitempty"`
	PlannedEnd   *time.Time  `json:"planned_end,omitempty"`
	Deadline     *time.Time  `json:"deadline,omitempty"`
	IsFixed      bool        `json:"is_fixed"`
	DailyHours   HoursByDate `json:"daily_hours"`
}

// GanttView is the gantt payload attached to a task listing when requested.
// Entries are ordered by task id; DailyTotals sums every entry's hours per
// day so clients can render the load line without re-aggregating.
type GanttView struct {
	Entries     []GanttEntry `json:"entries"`
	DailyTotals HoursByDate  `json:"daily_totals"`
	StartDate   Date         `json:"start_date,omitempty"`
	EndDate     Date         `json:"end_date,omitempty"`
}

// NewGanttView builds the gantt payload for the given tasks. The spread
// function derives per-day hours for tasks without stored allocations;
// stored daily_allocations take precedence because they carry the exact
// shape the optimizer produced. Tasks yielding no allocated days are left
// out of the view.
func NewGanttView(tasks []*Task, spread func(*Task) HoursByDate) GanttView {
	view := GanttView{DailyTotals: make(HoursByDate)}
	for _, t := range tasks {
		hours := t.DailyAllocations
		if len(hours) == 0 && spread != nil {
			hours = spread(t)
		}
		if len(hours) == 0 {
			continue
		}
		view.Entries = append(view.Entries, GanttEntry{
			TaskID:       t.ID,
			TaskName:     t.Name,
			Status:       t.Status,
			PlannedStart: t.PlannedStart,
			PlannedEnd:   t.PlannedEnd,
			Deadline:     t.Deadline,
			IsFixed:      t.IsFixed,
			DailyHours:   hours.Clone(),
		})
		for d, h := range hours {
			view.DailyTotals[d] += h
			if view.StartDate.IsZero() || d.Before(view.StartDate) {
				view.StartDate = d
			}
			if view.EndDate.IsZero() || d.After(view.EndDate) {
				view.EndDate = d
			}
		}
	}
	sort.Slice(view.Entries, func(i, j int) bool {
		return view.Entries[i].TaskID < view.Entries[j].TaskID
	})
	return view
}
