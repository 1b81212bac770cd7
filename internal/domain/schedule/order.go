package schedule

import (
	"sort"

	"github.com/taskdog/taskdog/internal/domain/model"
)

func priorityOf(t *model.Task) int {
	if t.Priority == nil {
		return 0
	}
	return *t.Priority
}

// lessPriority orders by priority descending, then id ascending.
func lessPriority(a, b *model.Task) bool {
	if pa, pb := priorityOf(a), priorityOf(b); pa != pb {
		return pa > pb
	}
	return a.ID < b.ID
}

// lessDeadline orders by deadline ascending with absent deadlines last,
// then id ascending.
func lessDeadline(a, b *model.Task) bool {
	switch {
	case a.Deadline != nil && b.Deadline != nil:
		if !a.Deadline.Equal(*b.Deadline) {
			return a.Deadline.Before(*b.Deadline)
		}
	case a.Deadline != nil:
		return true
	case b.Deadline != nil:
		return false
	}
	return a.ID < b.ID
}

// lessDependencyAware orders by deadline ascending (absent last), then
// priority descending, then id ascending. It is the tiebreaker inside the
// topological pass.
func lessDependencyAware(a, b *model.Task) bool {
	switch {
	case a.Deadline != nil && b.Deadline != nil:
		if !a.Deadline.Equal(*b.Deadline) {
			return a.Deadline.Before(*b.Deadline)
		}
	case a.Deadline != nil:
		return true
	case b.Deadline != nil:
		return false
	}
	if pa, pb := priorityOf(a), priorityOf(b); pa != pb {
		return pa > pb
	}
	return a.ID < b.ID
}

func sortedCopy(tasks []*model.Task, less func(a, b *model.Task) bool) []*model.Task {
	out := append([]*model.Task(nil), tasks...)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func orderByPriority(tasks []*model.Task) (ordered, unorderable []*model.Task) {
	return sortedCopy(tasks, lessPriority), nil
}

func orderByDeadline(tasks []*model.Task) (ordered, unorderable []*model.Task) {
	return sortedCopy(tasks, lessDeadline), nil
}

// orderByDependency runs Kahn's algorithm over the depends_on edges inside
// the input set, breaking ties with lessDependencyAware so urgent work
// still comes first among unblocked tasks. Tasks stuck behind a cycle are
// returned as unorderable.
func orderByDependency(tasks []*model.Task) (ordered, unorderable []*model.Task) {
	inSet := make(map[int64]bool, len(tasks))
	for _, t := range tasks {
		inSet[t.ID] = true
	}
	indegree := make(map[int64]int, len(tasks))
	waiters := make(map[int64][]*model.Task)
	for _, t := range tasks {
		for _, dep := range t.DependsOn {
			if inSet[dep] && dep != t.ID {
				indegree[t.ID]++
				waiters[dep] = append(waiters[dep], t)
			}
		}
	}

	var ready []*model.Task
	for _, t := range tasks {
		if indegree[t.ID] == 0 {
			ready = append(ready, t)
		}
	}
	placed := make(map[int64]bool, len(tasks))
	for len(ready) > 0 {
		sort.SliceStable(ready, func(i, j int) bool { return lessDependencyAware(ready[i], ready[j]) })
		next := ready[0]
		ready = ready[1:]
		ordered = append(ordered, next)
		placed[next.ID] = true
		for _, w := range waiters[next.ID] {
			indegree[w.ID]--
			if indegree[w.ID] == 0 {
				ready = append(ready, w)
			}
		}
	}
	if len(ordered) < len(tasks) {
		for _, t := range tasks {
			if !placed[t.ID] {
				unorderable = append(unorderable, t)
			}
		}
		sort.SliceStable(unorderable, func(i, j int) bool { return unorderable[i].ID < unorderable[j].ID })
	}
	return ordered, unorderable
}

func orderIdentity(tasks []*model.Task) (ordered, unorderable []*model.Task) {
	return tasks, nil
}
