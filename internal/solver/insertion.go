package solver

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"pdp-route-service/internal/domain"
	"pdp-route-service/internal/localsearch"
	"slices"
)

// overloadPenalty makes any capacity violation dominate distance and tardiness.
const overloadPenalty = 1e6

// CheapestInsertion is a small batch solver: it keeps valid warm start routes,
// inserts every unassigned parcel where it adds the least cost and then
// relocates pickup-delivery pairs between vehicles with a hill climber.
type CheapestInsertion struct {
	// TardinessWeight converts a millisecond of lateness into distance units.
	TardinessWeight float64
	// Iterations bounds the relocate moves evaluated after insertion.
	Iterations int
	Seed       int64
}

func NewCheapestInsertion(iterations int, seed int64) *CheapestInsertion {
	return &CheapestInsertion{TardinessWeight: 1, Iterations: iterations, Seed: seed}
}

// Solve implements ports.Solver.
func (s *CheapestInsertion) Solve(ctx context.Context, state domain.GlobalState) ([][]*domain.Parcel, error) {
	routes := make([][]*domain.Parcel, len(state.Vehicles))
	assigned := map[string]bool{}

	for vi, vs := range state.Vehicles {
		if vs.Route != nil {
			if err := CheckRoute(state, vi); err != nil {
				return nil, fmt.Errorf("cheapest insertion: warm start rejected: %w", err)
			}
			routes[vi] = slices.Clone(vs.Route)
		} else {
			r, err := s.insertCargo(vs, state.Time)
			if err != nil {
				return nil, err
			}
			routes[vi] = r
		}
		for _, p := range routes[vi] {
			assigned[p.ID] = true
		}
	}

	if len(state.Vehicles) == 0 {
		return routes, nil
	}

	for _, p := range state.AvailableParcels {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("cheapest insertion: %w", err)
		}
		if assigned[p.ID] {
			continue
		}

		bestVehicle, bestDelta := -1, math.Inf(1)
		var bestRoute []*domain.Parcel
		for vi, vs := range state.Vehicles {
			base := s.cost(vs, routes[vi], state.Time)
			candidates, err := PlusTwoInsertions(routes[vi], p, 0)
			if err != nil {
				return nil, fmt.Errorf("cheapest insertion: parcel %s: %w", p.ID, err)
			}
			for _, cand := range candidates {
				if delta := s.cost(vs, cand, state.Time) - base; delta < bestDelta {
					bestVehicle, bestDelta, bestRoute = vi, delta, cand
				}
			}
		}
		routes[bestVehicle] = bestRoute
		assigned[p.ID] = true
	}

	if len(state.Vehicles) < 2 || s.Iterations <= 0 {
		return routes, nil
	}

	sol := toSolution(state, routes)
	cost := func(sol localsearch.Solution) float64 {
		total := 0.0
		for vi, r := range sol.ParcelRoutes() {
			total += s.cost(state.Vehicles[vi], r, state.Time)
		}
		return total
	}
	best := localsearch.Improve(sol, cost, rand.New(rand.NewSource(s.Seed)), s.Iterations)
	return best.ParcelRoutes(), nil
}

// insertCargo builds a delivery-only route for the parcels on board.
func (s *CheapestInsertion) insertCargo(vs domain.VehicleState, now int64) ([]*domain.Parcel, error) {
	route := []*domain.Parcel{}
	for _, p := range vs.Contents {
		candidates, err := PlusOneInsertions(route, p, 0)
		if err != nil {
			return nil, fmt.Errorf("cheapest insertion: cargo %s: %w", p.ID, err)
		}
		best, bestCost := candidates[0], math.Inf(1)
		for _, cand := range candidates {
			if c := s.cost(vs, cand, now); c < bestCost {
				best, bestCost = cand, c
			}
		}
		route = best
	}
	return route, nil
}

func (s *CheapestInsertion) cost(vs domain.VehicleState, route []*domain.Parcel, now int64) float64 {
	sched := Evaluate(vs, route, now)
	return sched.Distance + s.TardinessWeight*float64(sched.Tardiness) + overloadPenalty*float64(sched.Overload)
}

// toSolution indexes the parcel routes into a global solution.
func toSolution(state domain.GlobalState, routes [][]*domain.Parcel) localsearch.Solution {
	sol := localsearch.Solution{Routes: make([][]int, len(routes))}

	for vi, route := range routes {
		onBoard := map[string]bool{}
		for _, p := range state.Vehicles[vi].Contents {
			onBoard[p.ID] = true
		}
		pickups := map[string]int{}
		sol.Routes[vi] = make([]int, 0, len(route))

		for _, p := range route {
			idx := len(sol.Visits)
			switch pi, ok := pickups[p.ID]; {
			case onBoard[p.ID]:
				sol.Visits = append(sol.Visits, localsearch.Visit{Type: localsearch.Delivery, Parcel: p, Pair: -1})
			case ok:
				sol.Visits = append(sol.Visits, localsearch.Visit{Type: localsearch.Delivery, Parcel: p, Pair: pi})
				sol.Visits[pi].Pair = idx
			default:
				pickups[p.ID] = idx
				sol.Visits = append(sol.Visits, localsearch.Visit{Type: localsearch.Pickup, Parcel: p, Pair: -1})
			}
			sol.Routes[vi] = append(sol.Routes[vi], idx)
		}
	}
	return sol
}
