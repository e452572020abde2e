package ports

import (
	"context"
	"pdp-route-service/internal/domain"
)

// Port: a boundary for retrieving Parcel requests from a data source.
type ParcelRepository interface {
	// Retrieve all parcels known to the system, ordered by announce time.
	ListParcels(ctx context.Context) ([]*domain.Parcel, error)
}
