package solver

import "pdp-route-service/internal/domain"

// SolveArgs is what a planner hands to its solver handle.
// Parcels are the parcels the vehicle may pick up. CurrentRoute is the warm
// start hint; nil asks for a cold solve, an empty non-nil slice is a hint
// that the vehicle currently has nothing to do.
type SolveArgs struct {
	Parcels      []*domain.Parcel
	CurrentRoute []*domain.Parcel
}

// HasHint reports whether a warm start route is supplied.
func (a SolveArgs) HasHint() bool { return a.CurrentRoute != nil }
