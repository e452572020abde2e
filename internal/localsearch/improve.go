package localsearch

import (
	"math/rand"
	"pdp-route-service/internal/metrics"
)

// CostFunc scores a solution; lower is better.
type CostFunc func(Solution) float64

// Improve runs a first-improvement hill climber over relocate moves.
// At most iterations moves are evaluated. The iterator is rebuilt after every
// accepted move since it samples from a fixed solution.
func Improve(sol Solution, cost CostFunc, rng *rand.Rand, iterations int) Solution {
	var gen RelocateGenerator
	if gen.Size(sol) == 0 {
		return sol
	}

	best := sol
	bestCost := cost(best)
	it := gen.RandomMoves(best, rng)

	for i := 0; i < iterations; i++ {
		m, ok := it.Next()
		if !ok {
			break
		}

		cand, err := best.Apply(m)
		if err != nil {
			continue
		}

		if c := cost(cand); c < bestCost {
			best, bestCost = cand, c
			it = gen.RandomMoves(best, rng)
			metrics.MovesAccepted.Inc()
		}
	}

	return best
}
