package schedule

import (
	"time"

	"github.com/taskdog/taskdog/internal/domain/model"
)

// Helpers shared by the MonteCarlo and Genetic strategies, which both
// search the space of task orderings over the forward engine.

// trialOutcome is one evaluated ordering. The trial index breaks score
// ties so a fixed seed always reproduces the same winner regardless of
// goroutine completion order.
type trialOutcome struct {
	trial int
	res   Result
	sc    score
}

// runPermutation evaluates one ordering against a copy of the base grid,
// so concurrent trials never see each other's bookings.
func runPermutation(tasks []*model.Task, perm []int, base Grid, p Params) (Result, Grid) {
	g := base.Clone()
	ordered := make([]*model.Task, len(perm))
	for i, idx := range perm {
		ordered[i] = tasks[idx]
	}
	return runForward(ordered, g, p, orderIdentity), g
}

// applyResult books the winning plan onto the caller's grid, which the
// trials only ever cloned.
func applyResult(g Grid, res Result) {
	for _, t := range res.Scheduled {
		for d, hours := range t.DailyAllocations {
			g.Add(d, hours)
		}
	}
}

func identityPerm(n int) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	return perm
}

// searchDeadline converts the time budget into an absolute cutoff checked
// at trial and generation boundaries. A zero budget never cuts off.
func searchDeadline(p Params) time.Time {
	if p.TimeBudget <= 0 {
		return time.Time{}
	}
	return time.Now().Add(p.TimeBudget)
}

func pastDeadline(cutoff time.Time) bool {
	return !cutoff.IsZero() && !time.Now().Before(cutoff)
}
