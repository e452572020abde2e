package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"pdp-route-service/internal/domain"
	"pdp-route-service/internal/platform/obs"
	"pdp-route-service/internal/ports"
)

var _ ports.ParcelRepository = (*SQLParcelRepository)(nil)

// Postgres-backed implementation of the ParcelRepository port.
type SQLParcelRepository struct{ DB *sql.DB }

func NewSQLParcelRepository(db *sql.DB) *SQLParcelRepository {
	return &SQLParcelRepository{DB: db}
}

// Return all parcels stored in the database, ordered by arrival time.
func (s *SQLParcelRepository) ListParcels(ctx context.Context) (_ []*domain.Parcel, err error) {
	defer obs.Time(ctx, "parcels.ListParcels")(&err)

	if s.DB == nil {
		return nil, errors.New("sql parcel repository: DB is nil")
	}

	query := `
	SELECT
		parcel_id,
		arrival_time,
		pickup_x, pickup_y,
		delivery_x, delivery_y,
		pickup_begin, pickup_end,
		delivery_begin, delivery_end,
		service_duration,
		demand
	FROM parcels
	ORDER BY arrival_time, parcel_id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list parcels: query parcels table: %w", err)
	}
	defer rows.Close()

	parcels := make([]*domain.Parcel, 0, 64)
	for rows.Next() {
		var p domain.Parcel
		err := rows.Scan(
			&p.ID,
			&p.ArrivalTime,
			&p.PickupLocation.X, &p.PickupLocation.Y,
			&p.DeliveryLocation.X, &p.DeliveryLocation.Y,
			&p.PickupWindow.Begin, &p.PickupWindow.End,
			&p.DeliveryWindow.Begin, &p.DeliveryWindow.End,
			&p.ServiceDuration,
			&p.Demand,
		)
		if err != nil {
			return nil, fmt.Errorf("list parcels: scan row: %w", err)
		}
		parcels = append(parcels, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list parcels: row iteration: %w", err)
	}

	return parcels, nil
}

// StaticParcelRepository serves a fixed parcel list, used when no database
// is configured.
type StaticParcelRepository struct {
	Parcels []*domain.Parcel
}

func (s *StaticParcelRepository) ListParcels(context.Context) ([]*domain.Parcel, error) {
	out := make([]*domain.Parcel, len(s.Parcels))
	copy(out, s.Parcels)
	return out, nil
}
