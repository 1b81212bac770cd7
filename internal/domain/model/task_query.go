//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"sort"
	"strings"
)

// Task list sort fields allowed by the API.
const (
	TaskSortID        = "id"
	TaskSortName      = "name"
	TaskSortPriority  = "priority"
	TaskSortDeadline  = "deadline"
	TaskSortStatus    = "status"
	TaskSortCreatedAt = "created_at"
)

// ValidTaskSort reports whether the sort field is supported.
func ValidTaskSort(field string) bool {
	switch field {
	case TaskSortID, TaskSortName, TaskSortPriority, TaskSortDeadline, TaskSortStatus, TaskSortCreatedAt:
		return true
	default:
		return false
	}
}

// TasksListOptions controls filtering and ordering for task listings.
// Notes:
// - Tags requires every named tag to be present on the task.
// - StartDate/EndDate select tasks whose planned period or deadline
//   overlaps the window; either bound may be open.
// - Sort supports the TaskSort* fields; default is insertion order (id).
// - IncludeArchived widens the listing to archived tasks.
type TasksListOptions struct {
	IncludeArchived bool
	Status          *TaskStatus
	Tags            []string
	StartDate       Date
	EndDate         Date
	Sort            string
	Reverse         bool
}

// Matches reports whether the task passes the filter portion of the options.
func (o TasksListOptions) Matches(t *Task) bool {
	if !o.IncludeArchived && t.IsArchived {
		return false
	}
	if o.Status != nil && t.Status != *o.Status {
		return false
	}
	for _, want := range o.Tags {
		if !hasTag(t, want) {
			return false
		}
	}
	if !o.StartDate.IsZero() || !o.EndDate.IsZero() {
		if !o.overlapsWindow(t) {
			return false
		}
	}
	return true
}

func hasTag(t *Task, want string) bool {
	for _, tag := range t.Tags {
		if strings.EqualFold(tag, want) {
			return true
		}
	}
	return false
}

// overlapsWindow checks the planned period, then the deadline, against the
// [StartDate, EndDate] window.
func (o TasksListOptions) overlapsWindow(t *Task) bool {
	if t.HasPlannedPeriod() {
		start := DateOf(*t.PlannedStart, nil)
		end := DateOf(*t.PlannedEnd, nil)
		if !o.EndDate.IsZero() && start.After(o.EndDate) {
			return false
		}
		if !o.StartDate.IsZero() && end.Before(o.StartDate) {
			return false
		}
		return true
	}
	if t.Deadline != nil {
		d := DateOf(*t.Deadline, nil)
		if !o.EndDate.IsZero() && d.After(o.EndDate) {
			return false
		}
		if !o.StartDate.IsZero() && d.Before(o.StartDate) {
			return false
		}
		return true
	}
	return false
}

// SortTasks orders tasks in place per the options. Ties fall back to id so
// the order is stable across runs.
func SortTasks(tasks []*Task, opts TasksListOptions) {
	field := opts.Sort
	if field == "" {
		field = TaskSortID
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		less := lessBy(field, tasks[i], tasks[j])
		if opts.Reverse {
			return lessBy(field, tasks[j], tasks[i])
		}
		return less
	})
}

func lessBy(field string, a, b *Task) bool {
	switch field {
	case TaskSortName:
		if a.Name != b.Name {
			return a.Name < b.Name
		}
	case TaskSortPriority:
		pa, pb := priorityOrZero(a), priorityOrZero(b)
		if pa != pb {
			return pa > pb
		}
	case TaskSortDeadline:
		switch {
		case a.Deadline == nil && b.Deadline == nil:
		case a.Deadline == nil:
			return false
		case b.Deadline == nil:
			return true
		case !a.Deadline.Equal(*b.Deadline):
			return a.Deadline.Before(*b.Deadline)
		}
	case TaskSortStatus:
		if a.Status != b.Status {
			return a.Status < b.Status
		}
	case TaskSortCreatedAt:
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
	return a.ID < b.ID
}

func priorityOrZero(t *Task) int {
	if t.Priority == nil {
		return 0
	}
	return *t.Priority
}
