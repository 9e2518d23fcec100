package interfaces

import (
	"context"

	srdmodels "gitlab.com/sensorgrid1/srd.sensor_server/src/production/SRD.Models"
)

// DefaultRecentLimit bounds the recent-history query.
const DefaultRecentLimit = 10

type SensorDataRepository interface {
	// Insert persists a single validated reading.
	Insert(ctx context.Context, reading srdmodels.SensorReading) error

	// InsertMany persists a batch of validated readings.
	InsertMany(ctx context.Context, readings []srdmodels.SensorReading) error

	// RecentByDevice returns up to limit readings for the device, newest
	// first. A device with no readings yields an empty slice, not an error.
	RecentByDevice(ctx context.Context, deviceID string, limit int) ([]srdmodels.SensorReading, error)
}
