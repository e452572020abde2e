package planner

import (
	"context"
	"errors"
	"fmt"
	"pdp-route-service/internal/domain"
	"pdp-route-service/internal/ports"
	"slices"
)

var (
	// ErrUninitialized is returned when a planner is used before Activate.
	ErrUninitialized = errors.New("route planner is not activated")
	// ErrNotUpdated is returned by Next before the first Update.
	ErrNotUpdated = errors.New("route planner has not been updated")
	// ErrAlreadyActive is returned by a second Activate call.
	ErrAlreadyActive = errors.New("route planner is already activated")
)

// RoutePlanner decides which parcel a vehicle should head toward next.
//
// A planner starts unbound and becomes ready after a single Activate call.
// Update recomputes the targets from the visible parcels and the vehicle's
// cargo, Next advances past the current target once it has been serviced.
// Implementations are not safe for concurrent use; each vehicle owns one.
type RoutePlanner interface {
	Activate(vehicle domain.Vehicle, road ports.RoadModel, pdp ports.PDPModel) error
	Update(ctx context.Context, visible []*domain.Parcel, now int64) error
	Next(now int64) error
	// Current returns the parcel to move toward, or false when there is none.
	Current() (*domain.Parcel, bool)
	// HasNext reports whether at least one target remains, current included.
	HasNext() bool
}

// RouteReporter is implemented by planners that know their full remaining route.
type RouteReporter interface {
	CurrentRoute() []*domain.Parcel
}

// RouteChanger is implemented by planners whose route can be dictated from
// outside, for instance after winning an auction.
type RouteChanger interface {
	ChangeRoute(route []*domain.Parcel) error
}

// lifecycle holds the state every planner shares: the bound vehicle and
// simulation views, the updated flag and the serviced targets.
type lifecycle struct {
	vehicle domain.Vehicle
	road    ports.RoadModel
	pdp     ports.PDPModel
	active  bool
	updated bool
	history []*domain.Parcel
}

func (l *lifecycle) activate(vehicle domain.Vehicle, road ports.RoadModel, pdp ports.PDPModel) error {
	if l.active {
		return fmt.Errorf("activate planner: vehicle %s: %w", l.vehicle.ID, ErrAlreadyActive)
	}
	if road == nil || pdp == nil {
		return fmt.Errorf("activate planner: vehicle %s: road and pdp models are required", vehicle.ID)
	}
	l.vehicle, l.road, l.pdp = vehicle, road, pdp
	l.active = true
	return nil
}

func (l *lifecycle) checkActive(op string) error {
	if !l.active {
		return fmt.Errorf("%s: %w", op, ErrUninitialized)
	}
	return nil
}

func (l *lifecycle) checkUpdated(op string) error {
	if err := l.checkActive(op); err != nil {
		return err
	}
	if !l.updated {
		return fmt.Errorf("%s: vehicle %s: %w", op, l.vehicle.ID, ErrNotUpdated)
	}
	return nil
}

func (l *lifecycle) served(p *domain.Parcel) {
	l.history = append(l.history, p)
}

// IsUpdated reports whether Update succeeded at least once.
func (l *lifecycle) IsUpdated() bool { return l.updated }

// History returns the targets Next advanced past, oldest first.
func (l *lifecycle) History() []*domain.Parcel { return slices.Clone(l.history) }
