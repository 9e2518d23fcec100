package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	service "gitlab.com/sensorgrid1/srd.sensor_server/src/production/SRD.ApiService/implementation/auth"
	jwtservice "gitlab.com/sensorgrid1/srd.sensor_server/src/production/SRD.ApiService/implementation/jwt"
	logger "gitlab.com/sensorgrid1/srd.sensor_server/src/production/SRD.Logger"
	api_models "gitlab.com/sensorgrid1/srd.sensor_server/src/production/SRD.Models/api"
	interfaces "gitlab.com/sensorgrid1/srd.sensor_server/src/production/SRD.Repository/Interfaces"
)

// AuthController handles authentication requests
type AuthController struct {
	authService *service.AuthService
	logger      *logger.Logger
}

// NewAuthController creates a new auth controller
func NewAuthController(authService *service.AuthService, logger *logger.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		logger:      logger,
	}
}

// RegisterRoutes registers the auth routes with Gin
func (h *AuthController) RegisterRoutes(router *gin.Engine) {
	router.POST("/create-user", h.CreateUser)
	router.POST("/login", h.Login)
	router.POST("/refresh-token", h.RefreshToken)
	router.GET("/users", h.ListUsers)
}

// CreateUser handles user registration
func (h *AuthController) CreateUser(c *gin.Context) {
	var req api_models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := h.authService.CreateUser(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			c.JSON(http.StatusBadRequest, gin.H{"error": "all fields are required"})
		case errors.Is(err, interfaces.ErrDuplicateUser):
			c.JSON(http.StatusBadRequest, gin.H{"error": "user already exists"})
		default:
			h.logger.ErrorWithError(err, "error creating user")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "new user created successfully",
		"username": user.Username,
		"deviceId": user.DeviceID,
	})
}

// Login handles user login and token issuance
func (h *AuthController) Login(c *gin.Context) {
	var req api_models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	token, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid username or password"})
			return
		}
		h.logger.ErrorWithError(err, "login error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}

	c.JSON(http.StatusOK, api_models.TokenResponse{Token: token})
}

// RefreshToken handles token refresh
func (h *AuthController) RefreshToken(c *gin.Context) {
	var req api_models.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "refresh token required"})
		return
	}

	token, err := h.authService.Refresh(req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, jwtservice.ErrTokenExpired),
			errors.Is(err, jwtservice.ErrTokenMalformed),
			errors.Is(err, jwtservice.ErrTokenSignature):
			c.JSON(http.StatusForbidden, gin.H{"error": "invalid refresh token"})
		default:
			h.logger.ErrorWithError(err, "refresh token error")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		}
		return
	}

	c.JSON(http.StatusOK, api_models.TokenResponse{Token: token})
}

// ListUsers returns all users as {username, deviceId} pairs. Debug surface,
// kept unauthenticated as in the original deployment.
func (h *AuthController) ListUsers(c *gin.Context) {
	users, err := h.authService.ListUsers(c.Request.Context())
	if err != nil {
		h.logger.ErrorWithError(err, "error fetching users")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}

	c.JSON(http.StatusOK, users)
}
