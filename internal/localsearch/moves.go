package localsearch

import (
	"math/rand"
	"pdp-route-service/internal/metrics"
)

// maxRejections bounds the resampling of a pickup target before falling back
// to a uniform pick over the targets on other vehicles.
const maxRejections = 32

// RelocateGenerator produces random moves that take a pickup and its
// delivery out of one vehicle's route and insert them into another's.
type RelocateGenerator struct{}

// Size returns a cheap upper bound on the number of candidate moves.
func (RelocateGenerator) Size(sol Solution) int {
	if len(sol.Routes) <= 1 {
		return 0
	}
	return len(sol.Visits) + len(sol.Routes)
}

// RandomMoves returns a lazy, unbounded iterator over random relocate moves.
// All randomness is drawn from rng.
func (RelocateGenerator) RandomMoves(sol Solution, rng *rand.Rand) *RandomMoveIterator {
	vehicleOf := sol.VehicleOf()

	targets := make([]Anchor, 0, len(sol.Visits)+len(sol.Routes))
	for idx, v := range vehicleOf {
		if v >= 0 {
			targets = append(targets, Anchor{Vehicle: v, Visit: idx})
		}
	}
	for v := range sol.Routes {
		targets = append(targets, Anchor{Vehicle: v, Visit: StartOfRoute})
	}

	var movable []int
	for idx, visit := range sol.Visits {
		if visit.Type != Pickup || visit.Pair < 0 || vehicleOf[idx] < 0 {
			continue
		}
		if vehicleOf[visit.Pair] == vehicleOf[idx] {
			movable = append(movable, idx)
		}
	}

	return &RandomMoveIterator{
		sol:       sol,
		rng:       rng,
		vehicleOf: vehicleOf,
		movable:   movable,
		targets:   targets,
		foreign:   map[int][]Anchor{},
	}
}

// RandomMoveIterator draws relocate moves against a fixed solution.
type RandomMoveIterator struct {
	sol       Solution
	rng       *rand.Rand
	vehicleOf []int
	movable   []int
	targets   []Anchor
	foreign   map[int][]Anchor
}

// Next returns the next random move, or false when no valid move exists.
func (it *RandomMoveIterator) Next() (Move, bool) {
	if len(it.movable) == 0 || len(it.sol.Routes) <= 1 {
		return Move{}, false
	}

	pickup := it.movable[it.rng.Intn(len(it.movable))]
	delivery := it.sol.Visits[pickup].Pair
	src := it.vehicleOf[pickup]

	target := it.pickTarget(src)

	// the delivery may go right after the pickup or after any visit that
	// follows the pickup target
	options := []int{pickup}
	options = append(options, it.sol.Successors(target)...)
	after := options[it.rng.Intn(len(options))]

	metrics.MovesGenerated.Inc()
	return Move{
		Pickup:        pickup,
		Delivery:      delivery,
		PickupAfter:   target,
		DeliveryAfter: Anchor{Vehicle: target.Vehicle, Visit: after},
	}, true
}

func (it *RandomMoveIterator) pickTarget(src int) Anchor {
	for i := 0; i < maxRejections; i++ {
		t := it.targets[it.rng.Intn(len(it.targets))]
		if t.Vehicle != src {
			return t
		}
	}

	valid, ok := it.foreign[src]
	if !ok {
		for _, t := range it.targets {
			if t.Vehicle != src {
				valid = append(valid, t)
			}
		}
		it.foreign[src] = valid
	}
	return valid[it.rng.Intn(len(valid))]
}
