package api_models

import "time"

// CreateUserRequest is the body of POST /create-user.
type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	DeviceID string `json:"deviceId"`
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse carries a freshly issued bearer token.
type TokenResponse struct {
	Token string `json:"token"`
}

// RefreshTokenRequest is the body of POST /refresh-token.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// SensorDataRequest is the body of POST /sensor-data. Measurement fields are
// pointers so that missing fields can be told apart from zero values during
// validation. Timestamp is optional; the server assigns one when absent.
type SensorDataRequest struct {
	DeviceID    string     `json:"deviceId"`
	Temperature *float64   `json:"temperature"`
	Humidity    *float64   `json:"humidity"`
	Light       *float64   `json:"light"`
	Ultrasonic  *float64   `json:"ultrasonic"`
	Timestamp   *time.Time `json:"timestamp"`
}

// FieldError reports a single failed validation on a request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
