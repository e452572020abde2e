package domain

// GlobalState is a solver-ready snapshot of the world at a point in time.
//
// AvailableParcels lists parcels that still need to be picked up. Each
// VehicleState carries the parcels on board and, optionally, the route the
// vehicle currently follows. A nil Route means "no warm start".
type GlobalState struct {
	Time             int64
	AvailableParcels []*Parcel
	Vehicles         []VehicleState
}

type VehicleState struct {
	Vehicle  Vehicle
	Position Point
	Contents []*Parcel
	Route    []*Parcel
}
