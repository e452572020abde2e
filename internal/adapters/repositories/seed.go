package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"pdp-route-service/internal/domain"
	"strings"

	"github.com/google/uuid"
)

// ParcelSeed is the JSON shape of a parcel in a seed file.
// Points are [x, y] and windows are [begin, end] in milliseconds; a missing
// window is always open and a missing id is generated.
type ParcelSeed struct {
	ParcelID        string    `json:"parcel_id"`
	ArrivalTime     int64     `json:"arrival_time"`
	Pickup          []float64 `json:"pickup"`
	Delivery        []float64 `json:"delivery"`
	PickupWindow    []int64   `json:"pickup_window,omitempty"`
	DeliveryWindow  []int64   `json:"delivery_window,omitempty"`
	ServiceDuration int64     `json:"service_duration"`
	Demand          int       `json:"demand,omitempty"`
}

// ParseSeed decodes and validates a JSON array of parcel seeds.
func ParseSeed(data []byte) ([]*domain.Parcel, error) {
	var seeds []ParcelSeed
	if err := json.Unmarshal(data, &seeds); err != nil {
		return nil, fmt.Errorf("parse seed: parse json: %w", err)
	}

	parcels := make([]*domain.Parcel, 0, len(seeds))
	seen := make(map[string]bool, len(seeds))
	for i, s := range seeds {
		p, err := s.toParcel()
		if err != nil {
			return nil, fmt.Errorf("parse seed: item at index %d: %w", i+1, err)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("parse seed: item at index %d: duplicate parcel_id %q", i+1, p.ID)
		}
		seen[p.ID] = true
		parcels = append(parcels, p)
	}
	return parcels, nil
}

// ReadSeedFile loads parcels from a JSON seed file.
func ReadSeedFile(path string) ([]*domain.Parcel, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: read %q: %w", path, err)
	}
	return ParseSeed(bytes)
}

func (s ParcelSeed) toParcel() (*domain.Parcel, error) {
	id := strings.TrimSpace(s.ParcelID)
	if id == "" {
		id = uuid.NewString()
	}

	pickup, err := toPoint(s.Pickup)
	if err != nil {
		return nil, fmt.Errorf("pickup: %w", err)
	}
	delivery, err := toPoint(s.Delivery)
	if err != nil {
		return nil, fmt.Errorf("delivery: %w", err)
	}
	pickupWindow, err := toWindow(s.PickupWindow)
	if err != nil {
		return nil, fmt.Errorf("pickup_window: %w", err)
	}
	deliveryWindow, err := toWindow(s.DeliveryWindow)
	if err != nil {
		return nil, fmt.Errorf("delivery_window: %w", err)
	}

	if s.ServiceDuration < 0 {
		return nil, fmt.Errorf("service_duration must be >= 0, got %d", s.ServiceDuration)
	}
	demand := s.Demand
	if demand == 0 {
		demand = 1
	}
	if demand < 0 {
		return nil, fmt.Errorf("demand must be > 0, got %d", demand)
	}

	return &domain.Parcel{
		ID:               id,
		ArrivalTime:      s.ArrivalTime,
		PickupLocation:   pickup,
		DeliveryLocation: delivery,
		PickupWindow:     pickupWindow,
		DeliveryWindow:   deliveryWindow,
		ServiceDuration:  s.ServiceDuration,
		Demand:           demand,
	}, nil
}

func toPoint(v []float64) (domain.Point, error) {
	if len(v) != 2 {
		return domain.Point{}, fmt.Errorf("want [x, y], got %d values", len(v))
	}
	return domain.Point{X: v[0], Y: v[1]}, nil
}

func toWindow(v []int64) (domain.TimeWindow, error) {
	switch {
	case len(v) == 0:
		return domain.AlwaysOpen, nil
	case len(v) != 2:
		return domain.TimeWindow{}, fmt.Errorf("want [begin, end], got %d values", len(v))
	case v[0] > v[1]:
		return domain.TimeWindow{}, fmt.Errorf("begin %d is after end %d", v[0], v[1])
	}
	return domain.TimeWindow{Begin: v[0], End: v[1]}, nil
}

// Populate the database with parcel data from a JSON file.
func SeedFromJSON(ctx context.Context, db *sql.DB, jsonPath string) error {
	if db == nil {
		return errors.New("seed parcels: DB is nil")
	}

	parcels, err := ReadSeedFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed parcels: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed parcels: begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `
	INSERT INTO parcels (
		parcel_id,
		arrival_time,
		pickup_x, pickup_y,
		delivery_x, delivery_y,
		pickup_begin, pickup_end,
		delivery_begin, delivery_end,
		service_duration,
		demand
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	ON CONFLICT (parcel_id) DO UPDATE SET
		arrival_time = EXCLUDED.arrival_time,
		pickup_x = EXCLUDED.pickup_x,
		pickup_y = EXCLUDED.pickup_y,
		delivery_x = EXCLUDED.delivery_x,
		delivery_y = EXCLUDED.delivery_y,
		pickup_begin = EXCLUDED.pickup_begin,
		pickup_end = EXCLUDED.pickup_end,
		delivery_begin = EXCLUDED.delivery_begin,
		delivery_end = EXCLUDED.delivery_end,
		service_duration = EXCLUDED.service_duration,
		demand = EXCLUDED.demand;
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("seed parcels: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range parcels {
		_, err := stmt.ExecContext(ctx,
			p.ID,
			p.ArrivalTime,
			p.PickupLocation.X, p.PickupLocation.Y,
			p.DeliveryLocation.X, p.DeliveryLocation.Y,
			p.PickupWindow.Begin, p.PickupWindow.End,
			p.DeliveryWindow.Begin, p.DeliveryWindow.End,
			p.ServiceDuration,
			p.Demand,
		)
		if err != nil {
			return fmt.Errorf("seed parcels: insert parcel_id=%s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed parcels: commit tx: %w", err)
	}

	return nil
}
