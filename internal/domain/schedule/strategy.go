package schedule

import (
	"context"
	"fmt"
	"strings"

	"github.com/taskdog/taskdog/internal/domain/model"
)

// Algorithm names an optimization strategy. The string values are the API
// surface: clients send them in optimize requests and read them back in
// schedule_optimized events.
type Algorithm string

const (
	AlgorithmGreedy           Algorithm = "greedy"
	AlgorithmPriorityFirst    Algorithm = "priority_first"
	AlgorithmEarliestDeadline Algorithm = "earliest_deadline"
	AlgorithmDependencyAware  Algorithm = "dependency_aware"
	AlgorithmBalanced         Algorithm = "balanced"
	AlgorithmBackward         Algorithm = "backward"
	AlgorithmRoundRobin       Algorithm = "round_robin"
	AlgorithmMonteCarlo       Algorithm = "monte_carlo"
	AlgorithmGenetic          Algorithm = "genetic"
)

// Algorithms lists every registered algorithm in a stable order.
func Algorithms() []Algorithm {
	return []Algorithm{
		AlgorithmGreedy,
		AlgorithmPriorityFirst,
		AlgorithmEarliestDeadline,
		AlgorithmDependencyAware,
		AlgorithmBalanced,
		AlgorithmBackward,
		AlgorithmRoundRobin,
		AlgorithmMonteCarlo,
		AlgorithmGenetic,
	}
}

// ParseAlgorithm normalizes a client-supplied algorithm name.
func ParseAlgorithm(value string) (Algorithm, bool) {
	name := Algorithm(strings.ToLower(strings.TrimSpace(value)))
	for _, a := range Algorithms() {
		if a == name {
			return a, true
		}
	}
	return "", false
}

// Strategy is one scheduling algorithm. Run never mutates the input tasks;
// scheduled output tasks are clones. The grid is advanced in place to
// reflect the returned plan. Only the meta-heuristics honour ctx; the
// single-pass strategies run to completion.
type Strategy interface {
	Name() Algorithm
	Run(ctx context.Context, tasks []*model.Task, grid Grid, params Params) Result
}

// New returns the strategy registered under the given name.
func New(algorithm Algorithm) (Strategy, error) {
	switch algorithm {
	case AlgorithmGreedy:
		return &forwardStrategy{name: AlgorithmGreedy, order: orderByPriority}, nil
	case AlgorithmPriorityFirst:
		return &forwardStrategy{name: AlgorithmPriorityFirst, order: orderByPriority}, nil
	case AlgorithmEarliestDeadline:
		return &forwardStrategy{name: AlgorithmEarliestDeadline, order: orderByDeadline}, nil
	case AlgorithmDependencyAware:
		return &forwardStrategy{name: AlgorithmDependencyAware, order: orderByDependency}, nil
	case AlgorithmBalanced:
		return &balancedStrategy{}, nil
	case AlgorithmBackward:
		return &backwardStrategy{}, nil
	case AlgorithmRoundRobin:
		return &roundRobinStrategy{}, nil
	case AlgorithmMonteCarlo:
		return &monteCarloStrategy{}, nil
	case AlgorithmGenetic:
		return &geneticStrategy{}, nil
	}
	names := make([]string, 0, len(Algorithms()))
	for _, a := range Algorithms() {
		names = append(names, string(a))
	}
	return nil, fmt.Errorf("unknown optimization algorithm %q (valid: %s)",
		string(algorithm), strings.Join(names, ", "))
}
