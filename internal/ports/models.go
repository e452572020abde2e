package ports

import "pdp-route-service/internal/domain"

// Read-only spatial view of the simulation.
type RoadModel interface {
	// Return the current position of the vehicle.
	Position(vehicleID string) (domain.Point, error)
}

// Read-only pickup-and-delivery view of the simulation.
type PDPModel interface {
	// Return the parcels currently on board of the vehicle.
	Contents(vehicleID string) []*domain.Parcel
	// Return the lifecycle state of a parcel.
	ParcelState(parcelID string) domain.ParcelState
}
