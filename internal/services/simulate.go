package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"pdp-route-service/internal/adapters/simulation"
	"pdp-route-service/internal/domain"
	"pdp-route-service/internal/planner"
	"pdp-route-service/internal/platform/obs"
	"pdp-route-service/internal/ports"
	"pdp-route-service/internal/solver"
	"slices"

	"github.com/google/uuid"
)

// ErrInvalidRequest marks a simulation request that cannot be run.
var ErrInvalidRequest = errors.New("invalid simulation request")

// PlannerKind selects the route planner every vehicle uses.
type PlannerKind string

const (
	PlannerClosest PlannerKind = "closest"
	PlannerSolver  PlannerKind = "solver"
)

// SimulationRequest describes a fleet run. Times are in milliseconds and
// Speed in distance units per millisecond.
type SimulationRequest struct {
	VehicleCount     int
	Capacity         int
	Speed            float64
	Depot            domain.Point
	Planner          PlannerKind
	ReuseRoutes      bool
	TickLength       int64
	MaxTime          int64
	SolverIterations int
	Seed             int64
}

const (
	defaultSpeed      = 0.01
	defaultTickLength = 1000
	defaultMaxTime    = 24 * 60 * 60 * 1000
)

func (r SimulationRequest) normalized() (SimulationRequest, error) {
	if r.Planner == "" {
		r.Planner = PlannerClosest
	}
	if r.Speed == 0 {
		r.Speed = defaultSpeed
	}
	if r.TickLength == 0 {
		r.TickLength = defaultTickLength
	}
	if r.MaxTime == 0 {
		r.MaxTime = defaultMaxTime
	}

	switch {
	case r.VehicleCount <= 0:
		return r, fmt.Errorf("vehicle count must be > 0, got %d: %w", r.VehicleCount, ErrInvalidRequest)
	case r.Capacity < 0:
		return r, fmt.Errorf("capacity must be >= 0, got %d: %w", r.Capacity, ErrInvalidRequest)
	case r.Speed < 0:
		return r, fmt.Errorf("speed must be > 0, got %v: %w", r.Speed, ErrInvalidRequest)
	case r.TickLength < 0 || r.MaxTime < 0:
		return r, fmt.Errorf("tick length and max time must be > 0: %w", ErrInvalidRequest)
	case r.Planner != PlannerClosest && r.Planner != PlannerSolver:
		return r, fmt.Errorf("unknown planner %q: %w", r.Planner, ErrInvalidRequest)
	}
	return r, nil
}

func (r SimulationRequest) newPlanner() planner.RoutePlanner {
	if r.Planner == PlannerSolver {
		return planner.NewSolverPlanner(solver.NewCheapestInsertion(r.SolverIterations, r.Seed), r.ReuseRoutes)
	}
	return planner.NewClosestPlanner()
}

// SimulationResult reports what the fleet actually did.
type SimulationResult struct {
	RunID       string
	Plans       []*domain.RoutePlan
	Delivered   int
	Undelivered []string
	EndTime     int64
}

// Simulator runs parcels from a repository through a simulated fleet.
type Simulator struct {
	repo     ports.ParcelRepository
	registry ports.ClaimRegistry
}

func NewSimulator(repo ports.ParcelRepository, registry ports.ClaimRegistry) *Simulator {
	return &Simulator{repo: repo, registry: registry}
}

// Run simulates the fleet until every parcel is delivered or MaxTime passes.
//
// Parcels are announced at their arrival time and auctioned among the
// vehicles. Every tick each vehicle updates its planner with the parcels it
// claimed and drives toward the planner's current target. The first agent
// error stops the run.
func (s *Simulator) Run(ctx context.Context, req SimulationRequest) (_ *SimulationResult, err error) {
	defer obs.Time(ctx, "simulation.Run")(&err)

	req, err = req.normalized()
	if err != nil {
		return nil, fmt.Errorf("run simulation: %w", err)
	}

	parcels, err := s.repo.ListParcels(ctx)
	if err != nil {
		return nil, fmt.Errorf("run simulation: list parcels: %w", err)
	}
	pending := slices.Clone(parcels)
	slices.SortStableFunc(pending, func(a, b *domain.Parcel) int {
		switch {
		case a.ArrivalTime < b.ArrivalTime:
			return -1
		case a.ArrivalTime > b.ArrivalTime:
			return 1
		}
		return 0
	})

	runID := uuid.NewString()
	world := simulation.NewWorld()
	auction := NewAuction(s.registry, runID)

	agents := make([]*agent, 0, req.VehicleCount)
	for i := 0; i < req.VehicleCount; i++ {
		v := domain.Vehicle{
			ID:            fmt.Sprintf("v%d", i+1),
			StartPosition: req.Depot,
			Capacity:      req.Capacity,
			Speed:         req.Speed,
		}
		if err := world.AddVehicle(v); err != nil {
			return nil, fmt.Errorf("run simulation: %w", err)
		}
		a, err := newAgent(v, req.newPlanner(), world, auction)
		if err != nil {
			return nil, fmt.Errorf("run simulation: %w", err)
		}
		agents = append(agents, a)
	}

	log.Printf("run_id=%s op=simulation.start planner=%s vehicles=%d parcels=%d",
		runID, req.Planner, req.VehicleCount, len(parcels))

	var (
		now       int64
		announced int
		unsold    []*domain.Parcel
	)
	for now = 0; now <= req.MaxTime; now += req.TickLength {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run simulation: %w", err)
		}

		for announced < len(pending) && pending[announced].ArrivalTime <= now {
			if err := world.AddParcel(pending[announced]); err != nil {
				return nil, fmt.Errorf("run simulation: %w", err)
			}
			unsold = append(unsold, pending[announced])
			announced++
		}

		unsold, err = s.auctionAll(ctx, auction, world, agents, unsold)
		if err != nil {
			return nil, fmt.Errorf("run simulation: %w", err)
		}

		for _, a := range agents {
			if err := a.step(ctx, now, req.TickLength); err != nil {
				return nil, fmt.Errorf("run simulation: at %dms: %w", now, err)
			}
		}

		if announced == len(pending) && len(world.Parcels(domain.ParcelDelivered)) == len(pending) {
			break
		}
	}

	for _, a := range agents {
		if err := a.abandon(ctx); err != nil {
			return nil, fmt.Errorf("run simulation: %w", err)
		}
	}

	res := &SimulationResult{RunID: runID, EndTime: min(now, req.MaxTime), Undelivered: []string{}}
	for _, a := range agents {
		res.Plans = append(res.Plans, a.plan)
	}
	for _, p := range pending {
		if world.ParcelState(p.ID) == domain.ParcelDelivered {
			res.Delivered++
		} else {
			res.Undelivered = append(res.Undelivered, p.ID)
		}
	}

	log.Printf("run_id=%s op=simulation.done delivered=%d undelivered=%d end=%dms",
		runID, res.Delivered, len(res.Undelivered), res.EndTime)
	return res, nil
}

// auctionAll offers every unsold parcel and returns those nobody could take.
func (s *Simulator) auctionAll(ctx context.Context, auction *Auction, world *simulation.World, agents []*agent, parcels []*domain.Parcel) ([]*domain.Parcel, error) {
	var left []*domain.Parcel
	for _, p := range parcels {
		participants := make([]Participant, 0, len(agents))
		for _, a := range agents {
			part, err := a.participant()
			if err != nil {
				return nil, err
			}
			participants = append(participants, part)
		}

		winner, err := auction.Award(ctx, p, participants)
		if errors.Is(err, ErrNoBidder) {
			left = append(left, p)
			continue
		}
		if err != nil {
			return nil, err
		}
		if err := world.Claim(p.ID); err != nil {
			return nil, err
		}
		log.Printf("op=auction.award parcel=%s vehicle=%s", p.ID, winner)
	}
	return left, nil
}
