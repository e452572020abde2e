package domain

import "errors"

// ErrInfeasibleRoute is returned when a route violates precedence, capacity
// or time window constraints, or refers to parcels it can no longer serve.
var ErrInfeasibleRoute = errors.New("infeasible route")
