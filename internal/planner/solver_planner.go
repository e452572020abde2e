package planner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"pdp-route-service/internal/domain"
	"pdp-route-service/internal/metrics"
	"pdp-route-service/internal/ports"
	"pdp-route-service/internal/solver"
	"slices"
)

var (
	_ RoutePlanner  = (*SolverPlanner)(nil)
	_ RouteReporter = (*SolverPlanner)(nil)
	_ RouteChanger  = (*SolverPlanner)(nil)
)

// SolverPlanner follows the route computed by a batch solver.
//
// With route reuse enabled the previous route is offered as a warm start.
// A hint that is no longer feasible, or that the solver rejects, is dropped
// and the solve is repeated cold.
type SolverPlanner struct {
	lifecycle
	solver ports.Solver
	reuse  bool
	handle *solver.Handle
	route  []*domain.Parcel
}

func NewSolverPlanner(s ports.Solver, reuseCurrentRoutes bool) *SolverPlanner {
	return &SolverPlanner{solver: s, reuse: reuseCurrentRoutes}
}

// Activate binds the planner and builds its solver handle.
func (p *SolverPlanner) Activate(vehicle domain.Vehicle, road ports.RoadModel, pdp ports.PDPModel) error {
	if p.solver == nil {
		return fmt.Errorf("activate solver planner: vehicle %s: solver is required", vehicle.ID)
	}
	if err := p.activate(vehicle, road, pdp); err != nil {
		return err
	}

	h, err := solver.NewHandle(p.solver, vehicle, road, pdp)
	if err != nil {
		return fmt.Errorf("activate solver planner: %w", err)
	}
	p.handle = h
	return nil
}

func (p *SolverPlanner) Update(ctx context.Context, visible []*domain.Parcel, now int64) error {
	if err := p.checkActive("update solver planner"); err != nil {
		return err
	}
	metrics.PlannerUpdates.WithLabelValues("solver").Inc()

	if len(visible) == 0 && len(p.pdp.Contents(p.vehicle.ID)) == 0 {
		p.route = nil
		p.updated = true
		return nil
	}

	args := solver.SolveArgs{Parcels: visible}
	if p.reuse {
		args.CurrentRoute = append([]*domain.Parcel{}, p.route...)
	}

	state, err := p.handle.Convert(args, now)
	if err != nil {
		return fmt.Errorf("update solver planner: %w", err)
	}
	if args.HasHint() {
		if err := solver.CheckRoute(state, 0); err != nil {
			state = p.dropHint(state, err)
		}
	}

	route, err := p.handle.SolveState(ctx, state)
	if errors.Is(err, domain.ErrInfeasibleRoute) && state.Vehicles[0].Route != nil {
		state = p.dropHint(state, err)
		route, err = p.handle.SolveState(ctx, state)
	}
	if err != nil {
		return fmt.Errorf("update solver planner: vehicle %s: %w", p.vehicle.ID, err)
	}

	p.route = route
	p.updated = true
	return nil
}

// dropHint returns a cold copy of state. The solver may keep the snapshot it
// was given, so the original is left untouched.
func (p *SolverPlanner) dropHint(state domain.GlobalState, reason error) domain.GlobalState {
	log.Printf("vehicle=%s op=planner.update warm_start=discarded reason=%q", p.vehicle.ID, reason)
	metrics.WarmStartFallbacks.Inc()
	state.Vehicles = slices.Clone(state.Vehicles)
	state.Vehicles[0].Route = nil
	return state
}

// Next pops the head of the route.
func (p *SolverPlanner) Next(now int64) error {
	if err := p.checkUpdated("next solver planner"); err != nil {
		return err
	}
	if len(p.route) > 0 {
		p.served(p.route[0])
		p.route = p.route[1:]
	}
	return nil
}

func (p *SolverPlanner) Current() (*domain.Parcel, bool) {
	if len(p.route) == 0 {
		return nil, false
	}
	return p.route[0], true
}

func (p *SolverPlanner) HasNext() bool { return len(p.route) > 0 }

// CurrentRoute returns a copy of the remaining route.
func (p *SolverPlanner) CurrentRoute() []*domain.Parcel { return slices.Clone(p.route) }

// ChangeRoute replaces the route without consulting the solver.
func (p *SolverPlanner) ChangeRoute(route []*domain.Parcel) error {
	if err := p.checkActive("change route"); err != nil {
		return err
	}
	p.route = slices.Clone(route)
	p.updated = true
	return nil
}
