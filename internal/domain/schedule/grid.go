package schedule

import (
	"github.com/taskdog/taskdog/internal/domain/model"
)

// Grid is the date-to-booked-hours map owned by a single optimization run.
// It is seeded with every existing allocation (fixed bookings, tasks kept
// out of the run) so strategies see the real remaining capacity.
type Grid map[model.Date]float64

// NewGrid sums the daily allocations of the given tasks into a fresh grid.
func NewGrid(tasks []*model.Task) Grid {
	g := make(Grid)
	for _, t := range tasks {
		for d, hours := range t.DailyAllocations {
			g[d] += hours
		}
	}
	return g
}

// Hours returns the booked hours on d.
func (g Grid) Hours(d model.Date) float64 {
	return g[d]
}

// Add books hours on d.
func (g Grid) Add(d model.Date, hours float64) {
	g[d] += hours
}

// Subtract releases hours on d, deleting the entry when it reaches zero.
func (g Grid) Subtract(d model.Date, hours float64) {
	g[d] -= hours
	if g[d] <= hourEpsilon {
		delete(g, d)
	}
}

// Rollback releases a whole per-task allocation from the grid.
func (g Grid) Rollback(alloc model.HoursByDate) {
	for d, hours := range alloc {
		g.Subtract(d, hours)
	}
}

// Clone returns an independent copy.
func (g Grid) Clone() Grid {
	out := make(Grid, len(g))
	for d, hours := range g {
		out[d] = hours
	}
	return out
}

// availableHours returns the unbooked capacity on d. When d is the current
// day, capacity is further clamped to the wall-clock hours left until
// EndHour so same-day plans stay achievable.
func (p Params) availableHours(g Grid, d model.Date) float64 {
	avail := p.MaxHoursPerDay - g.Hours(d)
	if avail < 0 {
		avail = 0
	}
	if p.CurrentTime != nil && model.DateOf(*p.CurrentTime, p.Location) == d {
		left := d.At(p.EndHour, p.Location).Sub(p.CurrentTime.In(p.Location)).Hours()
		if left < 0 {
			left = 0
		}
		if left < avail {
			avail = left
		}
	}
	return avail
}
