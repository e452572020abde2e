package ports

import (
	"context"
	"pdp-route-service/internal/domain"
)

// Contract for an external batch solver.
//
// Solve returns one ordered parcel sequence per vehicle in state.Vehicles.
// A parcel awaiting pickup appears twice (pickup, then delivery); a parcel
// already on board appears once. A warm-start route the solver cannot use
// is rejected with an error wrapping domain.ErrInfeasibleRoute.
type Solver interface {
	Solve(ctx context.Context, state domain.GlobalState) ([][]*domain.Parcel, error)
}
