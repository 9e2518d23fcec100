package srdmodels

import "time"

// SensorReading is one immutable measurement sample reported by a device.
// All four measurement fields must be present before persistence.
type SensorReading struct {
	DeviceID    string    `bson:"device_id" db:"device_id" json:"deviceId"`
	Temperature float64   `bson:"temperature" db:"temperature" json:"temperature"`
	Humidity    float64   `bson:"humidity" db:"humidity" json:"humidity"`
	Light       float64   `bson:"light" db:"light" json:"light"`
	Ultrasonic  float64   `bson:"ultrasonic" db:"ultrasonic" json:"ultrasonic"`
	Timestamp   time.Time `bson:"timestamp" db:"ts" json:"timestamp"`
}

// NewSensorReading builds a reading, defaulting the timestamp server-side
// when the caller did not supply one.
func NewSensorReading(deviceID string, temperature, humidity, light, ultrasonic float64, ts *time.Time) SensorReading {
	stamp := time.Now().UTC()
	if ts != nil {
		stamp = ts.UTC()
	}
	return SensorReading{
		DeviceID:    deviceID,
		Temperature: temperature,
		Humidity:    humidity,
		Light:       light,
		Ultrasonic:  ultrasonic,
		Timestamp:   stamp,
	}
}
