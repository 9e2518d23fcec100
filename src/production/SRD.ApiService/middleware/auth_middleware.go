package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	jwtservice "gitlab.com/sensorgrid1/srd.sensor_server/src/production/SRD.ApiService/implementation/jwt"
)

// Key types for request context
type contextKey string

const (
	UserIDContextKey   contextKey = "user_id"
	DeviceIDContextKey contextKey = "device_id"
	TokenContextKey    contextKey = "access_token"
)

// AuthMiddleware validates bearer tokens on protected routes
type AuthMiddleware struct {
	jwtService *jwtservice.Service
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtService *jwtservice.Service) *AuthMiddleware {
	return &AuthMiddleware{jwtService: jwtService}
}

// extractToken gets a token from the Authorization header. The dashboard
// client historically sent the bare token, so both "Bearer <tok>" and a raw
// token value are accepted.
func extractToken(r *http.Request) string {
	token := r.Header.Get("Authorization")
	if token == "" {
		return ""
	}
	if strings.HasPrefix(token, "Bearer ") {
		return strings.TrimPrefix(token, "Bearer ")
	}
	return token
}

// Authenticate middleware verifies the bearer token. On a 401 the client is
// expected to discard its token and return to login.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c.Request)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}

		claims, err := m.jwtService.Validate(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(string(UserIDContextKey), claims.UserID)
		c.Set(string(DeviceIDContextKey), claims.DeviceID)
		c.Set(string(TokenContextKey), token)

		c.Next()
	}
}

// GetUserFromGinContext retrieves the authenticated user ID
func GetUserFromGinContext(c *gin.Context) (string, error) {
	userIDVal, exists := c.Get(string(UserIDContextKey))
	if !exists {
		return "", errors.New("user not found in context")
	}

	userID, ok := userIDVal.(string)
	if !ok {
		return "", errors.New("invalid user ID format in context")
	}

	return userID, nil
}

// GetDeviceFromGinContext retrieves the device ID bound to the token
func GetDeviceFromGinContext(c *gin.Context) (string, error) {
	deviceIDVal, exists := c.Get(string(DeviceIDContextKey))
	if !exists {
		return "", errors.New("device not found in context")
	}

	deviceID, ok := deviceIDVal.(string)
	if !ok {
		return "", errors.New("invalid device ID format in context")
	}

	return deviceID, nil
}
