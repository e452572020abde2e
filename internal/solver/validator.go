package solver

import (
	"fmt"
	"pdp-route-service/internal/domain"
)

// Schedule is the outcome of driving a route from the vehicle's position.
type Schedule struct {
	Distance  float64
	Tardiness int64
	// Overload sums, over all stops, the load in excess of capacity.
	Overload int
	// Starts holds the service start time of every stop.
	Starts []int64
	End    int64
}

// Evaluate drives route from the vehicle's current position starting at now.
// The first occurrence of a parcel that is not on board is its pickup; every
// other occurrence is a delivery. Vehicles wait for a window to open and
// accrue tardiness when they arrive after it closed.
func Evaluate(vs domain.VehicleState, route []*domain.Parcel, now int64) Schedule {
	onBoard := make(map[string]bool, len(vs.Contents))
	load := 0
	for _, p := range vs.Contents {
		onBoard[p.ID] = true
		load += p.Demand
	}

	sched := Schedule{Starts: make([]int64, 0, len(route))}
	pos, t := vs.Position, now
	picked := map[string]bool{}

	for _, p := range route {
		pickup := !onBoard[p.ID] && !picked[p.ID]

		loc, tw := p.DeliveryLocation, p.DeliveryWindow
		if pickup {
			loc, tw = p.PickupLocation, p.PickupWindow
		}

		d := domain.Distance(pos, loc)
		sched.Distance += d
		t += vs.Vehicle.TravelTime(d)
		if t < tw.Begin {
			t = tw.Begin
		}
		if !tw.IsBeforeEnd(t) {
			sched.Tardiness += t - tw.End
		}
		sched.Starts = append(sched.Starts, t)
		t += p.ServiceDuration
		pos = loc

		if pickup {
			picked[p.ID] = true
			load += p.Demand
		} else {
			load -= p.Demand
		}
		if c := vs.Vehicle.Capacity; c > 0 && load > c {
			sched.Overload += load - c
		}
	}

	sched.End = t
	return sched
}

// CheckRoute validates the current route of vehicle vi against the snapshot.
// Every parcel on board must be delivered exactly once, every other parcel
// must be available and appear exactly twice, capacity must never be
// exceeded and no stop may start after its window closed. A nil route is
// trivially valid. Errors wrap domain.ErrInfeasibleRoute.
func CheckRoute(state domain.GlobalState, vi int) error {
	if vi < 0 || vi >= len(state.Vehicles) {
		return fmt.Errorf("check route: no vehicle at index %d: %w", vi, domain.ErrInfeasibleRoute)
	}
	vs := state.Vehicles[vi]
	if vs.Route == nil {
		return nil
	}

	onBoard := make(map[string]bool, len(vs.Contents))
	for _, p := range vs.Contents {
		onBoard[p.ID] = true
	}
	available := make(map[string]bool, len(state.AvailableParcels))
	for _, p := range state.AvailableParcels {
		available[p.ID] = true
	}

	counts := map[string]int{}
	for _, p := range vs.Route {
		if !onBoard[p.ID] && !available[p.ID] {
			return fmt.Errorf("check route: vehicle %s: parcel %s is neither on board nor available: %w",
				vs.Vehicle.ID, p.ID, domain.ErrInfeasibleRoute)
		}
		counts[p.ID]++
	}
	for id, n := range counts {
		want := 2
		if onBoard[id] {
			want = 1
		}
		if n != want {
			return fmt.Errorf("check route: vehicle %s: parcel %s appears %d times, want %d: %w",
				vs.Vehicle.ID, id, n, want, domain.ErrInfeasibleRoute)
		}
	}
	for id := range onBoard {
		if counts[id] == 0 {
			return fmt.Errorf("check route: vehicle %s: parcel %s on board is never delivered: %w",
				vs.Vehicle.ID, id, domain.ErrInfeasibleRoute)
		}
	}

	sched := Evaluate(vs, vs.Route, state.Time)
	if sched.Overload > 0 {
		return fmt.Errorf("check route: vehicle %s: capacity %d exceeded: %w",
			vs.Vehicle.ID, vs.Vehicle.Capacity, domain.ErrInfeasibleRoute)
	}
	if sched.Tardiness > 0 {
		return fmt.Errorf("check route: vehicle %s: route is %dms late: %w",
			vs.Vehicle.ID, sched.Tardiness, domain.ErrInfeasibleRoute)
	}
	return nil
}
