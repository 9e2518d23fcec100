package api_models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenConfig holds JWT configuration
type TokenConfig struct {
	SecretKey     string
	TokenDuration time.Duration
	Issuer        string
}

// Claims represents the JWT claims binding a user identity to its device.
// Tokens are self-contained: nothing is persisted server-side, so a token
// stays usable until natural expiry.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"user_id"`
	DeviceID string `json:"device_id"`
}
