package schedule

import (
	"context"
	"math/rand"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taskdog/taskdog/internal/domain/model"
)

const (
	tournamentSize = 3
	mutationRate   = 0.2
)

// geneticStrategy evolves a population of task orderings: tournament
// selection, order crossover, swap mutation, with the best individual
// carried over unchanged each generation. Selection and breeding draw from
// a single seeded RNG, so a fixed seed reproduces the whole evolution.
type geneticStrategy struct{}

func (s *geneticStrategy) Name() Algorithm {
	return AlgorithmGenetic
}

func (s *geneticStrategy) Run(ctx context.Context, tasks []*model.Task, grid Grid, params Params) Result {
	p := params.normalized()
	n := len(tasks)
	if n == 0 {
		return Result{}
	}
	seed := p.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	cutoff := searchDeadline(p)

	// Seeding the population with the identity ordering guarantees the
	// search never does worse than a plain greedy pass.
	population := make([][]int, p.Population)
	population[0] = identityPerm(n)
	for i := 1; i < len(population); i++ {
		population[i] = rng.Perm(n)
	}

	outcomes := evaluatePopulation(ctx, population, tasks, grid, p)
	bestIdx := bestOutcomeIndex(outcomes)
	best := outcomes[bestIdx]

	for gen := 0; gen < p.Generations; gen++ {
		if ctx.Err() != nil || pastDeadline(cutoff) {
			break
		}
		next := make([][]int, 0, len(population))
		next = append(next, append([]int(nil), population[bestIdx]...))
		for len(next) < len(population) {
			a := tournament(rng, outcomes)
			b := tournament(rng, outcomes)
			child := orderCrossover(rng, population[a], population[b])
			if rng.Float64() < mutationRate {
				swapMutate(rng, child)
			}
			next = append(next, child)
		}
		population = next
		outcomes = evaluatePopulation(ctx, population, tasks, grid, p)
		bestIdx = bestOutcomeIndex(outcomes)
		if outcomes[bestIdx].sc.better(best.sc) {
			best = outcomes[bestIdx]
		}
	}

	applyResult(grid, best.res)
	return best.res
}

// evaluatePopulation scores every individual in parallel. Results land in
// a slice indexed by individual, so the outcome is independent of
// goroutine scheduling.
func evaluatePopulation(ctx context.Context, population [][]int, tasks []*model.Task, base Grid, p Params) []trialOutcome {
	outcomes := make([]trialOutcome, len(population))
	eg, _ := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, perm := range population {
		eg.Go(func() error {
			res, trialGrid := runPermutation(tasks, perm, base, p)
			outcomes[i] = trialOutcome{trial: i, res: res, sc: evaluate(res, trialGrid, p)}
			return nil
		})
	}
	_ = eg.Wait()
	return outcomes
}

func bestOutcomeIndex(outcomes []trialOutcome) int {
	best := 0
	for i := 1; i < len(outcomes); i++ {
		if outcomes[i].sc.better(outcomes[best].sc) {
			best = i
		}
	}
	return best
}

// tournament draws tournamentSize individuals and returns the fittest.
func tournament(rng *rand.Rand, outcomes []trialOutcome) int {
	best := rng.Intn(len(outcomes))
	for i := 1; i < tournamentSize; i++ {
		c := rng.Intn(len(outcomes))
		if outcomes[c].sc.better(outcomes[best].sc) {
			best = c
		}
	}
	return best
}

// orderCrossover is OX1: the child inherits a random slice of parent a in
// place, then fills the remaining positions with parent b's genes in b's
// order, wrapping past the slice.
func orderCrossover(rng *rand.Rand, a, b []int) []int {
	n := len(a)
	child := make([]int, n)
	if n < 2 {
		copy(child, a)
		return child
	}
	i, j := rng.Intn(n), rng.Intn(n)
	if i > j {
		i, j = j, i
	}
	used := make([]bool, n)
	for k := i; k <= j; k++ {
		child[k] = a[k]
		used[a[k]] = true
	}
	pos := (j + 1) % n
	for off := 0; off < n; off++ {
		gene := b[(j+1+off)%n]
		if used[gene] {
			continue
		}
		child[pos] = gene
		used[gene] = true
		pos = (pos + 1) % n
	}
	return child
}

func swapMutate(rng *rand.Rand, perm []int) {
	if len(perm) < 2 {
		return
	}
	i, j := rng.Intn(len(perm)), rng.Intn(len(perm))
	perm[i], perm[j] = perm[j], perm[i]
}
