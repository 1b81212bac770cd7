package schedule

import (
	"context"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taskdog/taskdog/internal/domain/model"
)

// monteCarloStrategy samples random task orderings through the forward
// engine and keeps the best-scoring plan. Trials run in parallel; each
// derives its own RNG from the seed so results do not depend on
// interleaving.
type monteCarloStrategy struct{}

func (s *monteCarloStrategy) Name() Algorithm {
	return AlgorithmMonteCarlo
}

func (s *monteCarloStrategy) Run(ctx context.Context, tasks []*model.Task, grid Grid, params Params) Result {
	p := params.normalized()
	if len(tasks) == 0 {
		return Result{}
	}
	seed := p.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	cutoff := searchDeadline(p)

	var (
		mu   sync.Mutex
		best trialOutcome
		have bool
	)
	consider := func(o trialOutcome) {
		mu.Lock()
		defer mu.Unlock()
		switch {
		case !have:
			best, have = o, true
		case o.sc.better(best.sc):
			best = o
		case !best.sc.better(o.sc) && o.trial < best.trial:
			best = o
		}
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for trial := 0; trial < p.Trials; trial++ {
		if egCtx.Err() != nil || pastDeadline(cutoff) {
			break
		}
		eg.Go(func() error {
			rng := rand.New(rand.NewSource(seed + int64(trial)))
			res, trialGrid := runPermutation(tasks, rng.Perm(len(tasks)), grid, p)
			consider(trialOutcome{trial: trial, res: res, sc: evaluate(res, trialGrid, p)})
			return nil
		})
	}
	_ = eg.Wait()

	if !have {
		// Budget or cancellation preempted every trial; a single ordered
		// pass is still better than returning nothing.
		res, trialGrid := runPermutation(tasks, identityPerm(len(tasks)), grid, p)
		best = trialOutcome{res: res, sc: evaluate(res, trialGrid, p)}
	}
	applyResult(grid, best.res)
	return best.res
}
