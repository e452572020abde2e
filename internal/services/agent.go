package services

import (
	"context"
	"fmt"
	"pdp-route-service/internal/adapters/simulation"
	"pdp-route-service/internal/comm"
	"pdp-route-service/internal/domain"
	"pdp-route-service/internal/planner"
)

// agent drives one vehicle: it owns the vehicle's planner and bidder and
// records the stops it actually makes.
type agent struct {
	vehicle   domain.Vehicle
	planner   planner.RoutePlanner
	bidder    *comm.Bidder
	world     *simulation.World
	auction   *Auction
	plan      *domain.RoutePlan
	busyUntil int64
}

func newAgent(v domain.Vehicle, p planner.RoutePlanner, world *simulation.World, auction *Auction) (*agent, error) {
	if err := p.Activate(v, world, world); err != nil {
		return nil, fmt.Errorf("new agent: %w", err)
	}
	return &agent{
		vehicle: v,
		planner: p,
		bidder:  comm.NewBidder(v.ID),
		world:   world,
		auction: auction,
		plan:    &domain.RoutePlan{VehicleID: v.ID, Stops: []domain.RouteStop{}},
	}, nil
}

func (a *agent) participant() (Participant, error) {
	pos, err := a.world.Position(a.vehicle.ID)
	if err != nil {
		return Participant{}, err
	}
	return Participant{Bidder: a.bidder, Position: pos, Capacity: a.vehicle.Capacity}, nil
}

// visible lists the claimed parcels still waiting for pickup.
func (a *agent) visible() []*domain.Parcel {
	out := []*domain.Parcel{}
	for _, p := range a.bidder.Claimed() {
		if !a.world.ParcelState(p.ID).IsPickedUp() {
			out = append(out, p)
		}
	}
	return out
}

// step advances the agent through the tick [now, now+tick).
// A stop that starts inside the tick is always completed; service time
// that runs past the tick keeps the vehicle busy in the following ones.
func (a *agent) step(ctx context.Context, now, tick int64) error {
	if err := a.planner.Update(ctx, a.visible(), now); err != nil {
		return fmt.Errorf("agent %s: %w", a.vehicle.ID, err)
	}

	clock := max(now, a.busyUntil)
	end := now + tick
	for clock < end {
		target, ok := a.planner.Current()
		if !ok {
			break
		}

		state := a.world.ParcelState(target.ID)
		loc := target.Location(state)

		before, err := a.world.Position(a.vehicle.ID)
		if err != nil {
			return fmt.Errorf("agent %s: %w", a.vehicle.ID, err)
		}
		arrived, used, err := a.world.MoveTo(a.vehicle.ID, loc, end-clock)
		if err != nil {
			return fmt.Errorf("agent %s: %w", a.vehicle.ID, err)
		}
		after, _ := a.world.Position(a.vehicle.ID)
		a.plan.TotalDistance += domain.Distance(before, after)
		clock += used
		if !arrived {
			break
		}

		start, err := a.serve(ctx, target, state, clock)
		if err != nil {
			return err
		}
		clock = start + target.ServiceDuration
		if err := a.planner.Next(start); err != nil {
			return fmt.Errorf("agent %s: %w", a.vehicle.ID, err)
		}
	}

	a.busyUntil = clock
	return nil
}

// abandon hands back the claims the agent still holds when the run ends.
// Parcels not yet picked up become available again.
func (a *agent) abandon(ctx context.Context) error {
	for _, p := range a.bidder.Claimed() {
		if a.world.ParcelState(p.ID) == domain.ParcelClaimed {
			if err := a.world.Release(p.ID); err != nil {
				return fmt.Errorf("agent %s: %w", a.vehicle.ID, err)
			}
			if err := a.bidder.Unclaim(p); err != nil {
				return fmt.Errorf("agent %s: %w", a.vehicle.ID, err)
			}
			if err := a.bidder.Remove(p); err != nil {
				return fmt.Errorf("agent %s: %w", a.vehicle.ID, err)
			}
		}
		if err := a.auction.Release(ctx, p.ID, a.vehicle.ID); err != nil {
			return fmt.Errorf("agent %s: %w", a.vehicle.ID, err)
		}
	}
	return nil
}

// serve picks up or delivers the parcel, waiting for its window to open,
// and returns the service start time.
func (a *agent) serve(ctx context.Context, p *domain.Parcel, state domain.ParcelState, arrival int64) (int64, error) {
	kind, tw := domain.StopPickup, p.PickupWindow
	if state.IsPickedUp() {
		kind, tw = domain.StopDelivery, p.DeliveryWindow
	}
	start := max(arrival, tw.Begin)

	switch kind {
	case domain.StopPickup:
		if err := a.world.Pickup(a.vehicle.ID, p.ID); err != nil {
			return 0, fmt.Errorf("agent %s: %w", a.vehicle.ID, err)
		}
	case domain.StopDelivery:
		if err := a.world.Deliver(a.vehicle.ID, p.ID); err != nil {
			return 0, fmt.Errorf("agent %s: %w", a.vehicle.ID, err)
		}
		if err := a.bidder.Done(p); err != nil {
			return 0, fmt.Errorf("agent %s: %w", a.vehicle.ID, err)
		}
		if err := a.auction.Release(ctx, p.ID, a.vehicle.ID); err != nil {
			return 0, fmt.Errorf("agent %s: %w", a.vehicle.ID, err)
		}
	}

	var tardiness int64
	if !tw.IsBeforeEnd(start) {
		tardiness = start - tw.End
	}
	a.plan.Stops = append(a.plan.Stops, domain.RouteStop{
		ParcelID:  p.ID,
		Kind:      kind,
		Location:  p.Location(state),
		ArriveAt:  start,
		Tardiness: tardiness,
	})
	a.plan.TotalTardiness += tardiness
	return start, nil
}
