package solver

import (
	"context"
	"errors"
	"fmt"
	"pdp-route-service/internal/domain"
	"pdp-route-service/internal/metrics"
	"pdp-route-service/internal/platform/obs"
	"pdp-route-service/internal/ports"
	"slices"

	"github.com/prometheus/client_golang/prometheus"
)

// Handle binds a solver to one vehicle and the simulation views it reads
// the live state from.
type Handle struct {
	solver  ports.Solver
	vehicle domain.Vehicle
	road    ports.RoadModel
	pdp     ports.PDPModel
}

// NewHandle returns a handle for the given vehicle.
func NewHandle(s ports.Solver, vehicle domain.Vehicle, road ports.RoadModel, pdp ports.PDPModel) (*Handle, error) {
	if s == nil || road == nil || pdp == nil {
		return nil, errors.New("new solver handle: solver, road and pdp models are required")
	}
	return &Handle{solver: s, vehicle: vehicle, road: road, pdp: pdp}, nil
}

// Convert builds a single-vehicle snapshot of the current simulation state.
// Parcels already picked up or on board are not offered for pickup.
func (h *Handle) Convert(args SolveArgs, now int64) (domain.GlobalState, error) {
	pos, err := h.road.Position(h.vehicle.ID)
	if err != nil {
		return domain.GlobalState{}, fmt.Errorf("convert state: vehicle %s: %w", h.vehicle.ID, err)
	}
	contents := slices.Clone(h.pdp.Contents(h.vehicle.ID))

	onBoard := make(map[string]bool, len(contents))
	for _, p := range contents {
		onBoard[p.ID] = true
	}

	seen := map[string]bool{}
	available := make([]*domain.Parcel, 0, len(args.Parcels))
	for _, p := range args.Parcels {
		if seen[p.ID] || onBoard[p.ID] || h.pdp.ParcelState(p.ID).IsPickedUp() {
			continue
		}
		seen[p.ID] = true
		available = append(available, p)
	}

	vs := domain.VehicleState{
		Vehicle:  h.vehicle,
		Position: pos,
		Contents: contents,
	}
	if args.HasHint() {
		vs.Route = append([]*domain.Parcel{}, args.CurrentRoute...)
	}

	return domain.GlobalState{
		Time:             now,
		AvailableParcels: available,
		Vehicles:         []domain.VehicleState{vs},
	}, nil
}

// SolveState sends a snapshot produced by Convert to the solver and returns
// the route of the handle's vehicle.
func (h *Handle) SolveState(ctx context.Context, state domain.GlobalState) (route []*domain.Parcel, err error) {
	ctx = obs.WithVehicleID(ctx, h.vehicle.ID)
	defer obs.Time(ctx, "solver.solve")(&err)

	mode := "cold"
	if len(state.Vehicles) > 0 && state.Vehicles[0].Route != nil {
		mode = "warm"
	}

	timer := prometheus.NewTimer(metrics.SolveDuration)
	routes, err := h.solver.Solve(ctx, state)
	timer.ObserveDuration()

	switch {
	case errors.Is(err, domain.ErrInfeasibleRoute):
		metrics.SolverCalls.WithLabelValues(mode, "infeasible").Inc()
		return nil, err
	case err != nil:
		metrics.SolverCalls.WithLabelValues(mode, "error").Inc()
		return nil, fmt.Errorf("solve: vehicle %s: %w", h.vehicle.ID, err)
	}
	metrics.SolverCalls.WithLabelValues(mode, "ok").Inc()

	if len(routes) != 1 {
		return nil, fmt.Errorf("solve: vehicle %s: expected 1 route, got %d", h.vehicle.ID, len(routes))
	}
	return routes[0], nil
}
