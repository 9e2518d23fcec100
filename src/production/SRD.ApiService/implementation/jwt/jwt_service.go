package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	api_models "gitlab.com/sensorgrid1/srd.sensor_server/src/production/SRD.Models/api"
)

// Validation failures callers can branch on. The API layer maps these to
// distinct HTTP responses.
var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenSignature = errors.New("token signature invalid")
)

// Service issues and validates signed bearer tokens. The signing key is
// process-wide configuration; rotating it invalidates all outstanding tokens.
type Service struct {
	config api_models.TokenConfig
}

// NewService creates a new JWT service
func NewService(config api_models.TokenConfig) *Service {
	return &Service{
		config: config,
	}
}

// Generate creates a signed token binding the user to its device, valid for
// the configured window.
func (s *Service) Generate(userID, deviceID string) (string, error) {
	now := time.Now()

	claims := api_models.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.config.Issuer,
		},
		UserID:   userID,
		DeviceID: deviceID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.SecretKey))
}

// Validate verifies signature and expiry and returns the embedded claims.
func (s *Service) Validate(tokenString string) (*api_models.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &api_models.Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenSignature
		}
		return []byte(s.config.SecretKey), nil
	})

	if err != nil {
		return nil, mapValidationError(err)
	}

	claims, ok := token.Claims.(*api_models.Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenMalformed
	}

	return claims, nil
}

// Refresh validates the presented token and issues a new one with a fresh
// validity window carrying the same claims. An already-expired token is
// rejected; there is no grace window.
func (s *Service) Refresh(tokenString string) (string, error) {
	claims, err := s.Validate(tokenString)
	if err != nil {
		return "", err
	}

	return s.Generate(claims.UserID, claims.DeviceID)
}

// mapValidationError collapses jwt/v5 parse failures into this package's
// sentinel errors. Expiry is checked before signature matters to the caller,
// but jwt/v5 reports both joined; expiry wins so clients are told to
// re-authenticate rather than shown a generic failure.
func mapValidationError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrTokenSignature
	default:
		return ErrTokenMalformed
	}
}
