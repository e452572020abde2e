package planner

import (
	"context"
	"fmt"
	"math"
	"pdp-route-service/internal/domain"
	"pdp-route-service/internal/metrics"
	"pdp-route-service/internal/ports"
	"slices"
)

var _ RoutePlanner = (*ClosestPlanner)(nil)

// ClosestPlanner always targets the parcel whose relevant location (pickup
// before it is picked up, delivery afterwards) is nearest to the vehicle.
//
// Next removes the current target from the pool; the pool is only refilled
// by the next Update.
type ClosestPlanner struct {
	lifecycle
	pool    []*domain.Parcel
	current *domain.Parcel
}

func NewClosestPlanner() *ClosestPlanner {
	return &ClosestPlanner{}
}

func (p *ClosestPlanner) Activate(vehicle domain.Vehicle, road ports.RoadModel, pdp ports.PDPModel) error {
	return p.activate(vehicle, road, pdp)
}

// Update rebuilds the pool from the visible parcels followed by the cargo.
func (p *ClosestPlanner) Update(_ context.Context, visible []*domain.Parcel, now int64) error {
	if err := p.checkActive("update closest planner"); err != nil {
		return err
	}

	contents := p.pdp.Contents(p.vehicle.ID)
	seen := make(map[string]bool, len(visible)+len(contents))
	pool := make([]*domain.Parcel, 0, len(visible)+len(contents))
	for _, parcel := range append(append([]*domain.Parcel{}, visible...), contents...) {
		if seen[parcel.ID] {
			continue
		}
		seen[parcel.ID] = true
		pool = append(pool, parcel)
	}

	p.pool = pool
	p.updated = true
	metrics.PlannerUpdates.WithLabelValues("closest").Inc()
	return p.selectCurrent()
}

func (p *ClosestPlanner) Next(now int64) error {
	if err := p.checkUpdated("next closest planner"); err != nil {
		return err
	}
	if p.current == nil {
		return nil
	}

	p.served(p.current)
	p.pool = slices.DeleteFunc(p.pool, func(parcel *domain.Parcel) bool { return parcel == p.current })
	return p.selectCurrent()
}

func (p *ClosestPlanner) Current() (*domain.Parcel, bool) {
	return p.current, p.current != nil
}

func (p *ClosestPlanner) HasNext() bool { return len(p.pool) > 0 }

// selectCurrent picks the nearest pool entry; ties keep the earliest one.
func (p *ClosestPlanner) selectCurrent() error {
	p.current = nil
	if len(p.pool) == 0 {
		return nil
	}

	pos, err := p.road.Position(p.vehicle.ID)
	if err != nil {
		return fmt.Errorf("select closest parcel: vehicle %s: %w", p.vehicle.ID, err)
	}

	// The first entry is the fallback when no distance compares, e.g. NaN.
	p.current = p.pool[0]
	best := p.distance(pos, p.pool[0])
	for _, parcel := range p.pool[1:] {
		if d := p.distance(pos, parcel); d < best || (math.IsNaN(best) && !math.IsNaN(d)) {
			best = d
			p.current = parcel
		}
	}
	return nil
}

func (p *ClosestPlanner) distance(pos domain.Point, parcel *domain.Parcel) float64 {
	return domain.Distance(pos, parcel.Location(p.pdp.ParcelState(parcel.ID)))
}
