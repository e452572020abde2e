package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the Postgres database schema.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createParcelsQuery := `
	CREATE TABLE IF NOT EXISTS parcels (
		parcel_id TEXT PRIMARY KEY,
		arrival_time BIGINT NOT NULL DEFAULT 0,
		pickup_x DOUBLE PRECISION NOT NULL,
		pickup_y DOUBLE PRECISION NOT NULL,
		delivery_x DOUBLE PRECISION NOT NULL,
		delivery_y DOUBLE PRECISION NOT NULL,
		pickup_begin BIGINT NOT NULL,
		pickup_end BIGINT NOT NULL,
		delivery_begin BIGINT NOT NULL,
		delivery_end BIGINT NOT NULL,
		service_duration BIGINT NOT NULL DEFAULT 0,
		demand INTEGER NOT NULL DEFAULT 1
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_parcels_arrival_time
	ON parcels(arrival_time, parcel_id);
	`

	statements := []string{
		createParcelsQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
