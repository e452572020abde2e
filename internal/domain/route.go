package domain

// StopKind tells whether a stop picks a parcel up or delivers it.
type StopKind string

const (
	StopPickup   StopKind = "pickup"
	StopDelivery StopKind = "delivery"
)

// Represents a single executed stop of a vehicle.
// A RouteStop records arriving at a parcel's pickup or delivery location
// and the tardiness incurred with respect to the relevant time window.
type RouteStop struct {
	ParcelID  string
	Kind      StopKind
	Location  Point
	ArriveAt  int64
	Tardiness int64
}

// Represents the route a single vehicle actually drove during a simulation.
// A RoutePlan is read-only reporting data and contains no side effects.
type RoutePlan struct {
	VehicleID      string
	Stops          []RouteStop
	TotalDistance  float64
	TotalTardiness int64
}
