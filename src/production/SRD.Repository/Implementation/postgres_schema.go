package implementation

import (
	"context"
	"database/sql"
)

// EnsureSchema creates the tables and indexes the Postgres backend needs.
// Runs once at startup; statements are idempotent.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id    TEXT PRIMARY KEY,
			username   TEXT NOT NULL UNIQUE,
			password   TEXT NOT NULL,
			device_id  TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS sensor_data (
			id          BIGSERIAL PRIMARY KEY,
			device_id   TEXT NOT NULL,
			temperature DOUBLE PRECISION NOT NULL,
			humidity    DOUBLE PRECISION NOT NULL,
			light       DOUBLE PRECISION NOT NULL,
			ultrasonic  DOUBLE PRECISION NOT NULL,
			ts          TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sensor_data_device_ts ON sensor_data (device_id, ts DESC)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}
