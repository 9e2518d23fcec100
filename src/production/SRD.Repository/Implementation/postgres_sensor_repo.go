package implementation

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	srdmodels "gitlab.com/sensorgrid1/srd.sensor_server/src/production/SRD.Models"
)

type PostgresSensorDataRepository struct {
	db *sql.DB
}

func NewPostgresSensorDataRepository(db *sql.DB) *PostgresSensorDataRepository {
	return &PostgresSensorDataRepository{db: db}
}

func (r *PostgresSensorDataRepository) Insert(ctx context.Context, reading srdmodels.SensorReading) error {
	query := `
		INSERT INTO sensor_data (device_id, temperature, humidity, light, ultrasonic, ts)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query, reading.DeviceID, reading.Temperature,
		reading.Humidity, reading.Light, reading.Ultrasonic, reading.Timestamp)
	return err
}

func (r *PostgresSensorDataRepository) InsertMany(ctx context.Context, readings []srdmodels.SensorReading) error {
	if len(readings) == 0 {
		return nil
	}

	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer txn.Rollback()

	stmt, err := txn.Prepare(pq.CopyIn("sensor_data", "device_id", "temperature", "humidity", "light", "ultrasonic", "ts"))
	if err != nil {
		return err
	}

	for _, reading := range readings {
		_, err = stmt.Exec(reading.DeviceID, reading.Temperature, reading.Humidity,
			reading.Light, reading.Ultrasonic, reading.Timestamp)
		if err != nil {
			return err
		}
	}

	if _, err = stmt.Exec(); err != nil {
		return err
	}

	if err = stmt.Close(); err != nil {
		return err
	}

	return txn.Commit()
}

func (r *PostgresSensorDataRepository) RecentByDevice(ctx context.Context, deviceID string, limit int) ([]srdmodels.SensorReading, error) {
	query := `
		SELECT device_id, temperature, humidity, light, ultrasonic, ts
		FROM sensor_data
		WHERE device_id = $1
		ORDER BY ts DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, deviceID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanReadings(rows)
}

func scanReadings(rows *sql.Rows) ([]srdmodels.SensorReading, error) {
	readings := make([]srdmodels.SensorReading, 0)

	for rows.Next() {
		var reading srdmodels.SensorReading

		if err := rows.Scan(&reading.DeviceID, &reading.Temperature, &reading.Humidity,
			&reading.Light, &reading.Ultrasonic, &reading.Timestamp); err != nil {
			return nil, err
		}

		readings = append(readings, reading)
	}

	return readings, rows.Err()
}
