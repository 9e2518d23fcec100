package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gitlab.com/sensorgrid1/srd.sensor_server/src/production/SRD.ApiService/middleware"
	logger "gitlab.com/sensorgrid1/srd.sensor_server/src/production/SRD.Logger"
	srdmodels "gitlab.com/sensorgrid1/srd.sensor_server/src/production/SRD.Models"
	api_models "gitlab.com/sensorgrid1/srd.sensor_server/src/production/SRD.Models/api"
	interfaces "gitlab.com/sensorgrid1/srd.sensor_server/src/production/SRD.Repository/Interfaces"
)

// SensorController handles sensor data ingestion and retrieval
type SensorController struct {
	sensorRepo     interfaces.SensorDataRepository
	logger         *logger.Logger
	authMiddleware *middleware.AuthMiddleware

	// protectReads gates the retrieval endpoint behind the bearer token.
	protectReads bool
}

// NewSensorController creates a new sensor controller
func NewSensorController(sensorRepo interfaces.SensorDataRepository, logger *logger.Logger, authMiddleware *middleware.AuthMiddleware, protectReads bool) *SensorController {
	return &SensorController{
		sensorRepo:     sensorRepo,
		logger:         logger,
		authMiddleware: authMiddleware,
		protectReads:   protectReads,
	}
}

// RegisterRoutes registers the sensor data routes with Gin
func (h *SensorController) RegisterRoutes(router *gin.Engine) {
	// Devices post directly without a token.
	router.POST("/sensor-data", h.CreateReading)

	if h.protectReads {
		router.GET("/sensor-data/:deviceId", h.authMiddleware.Authenticate(), h.GetRecentReadings)
	} else {
		router.GET("/sensor-data/:deviceId", h.GetRecentReadings)
	}
}

// validateReading collects per-field validation failures the way the
// dashboard expects them: one entry per missing measurement.
func validateReading(req api_models.SensorDataRequest) []api_models.FieldError {
	var fieldErrors []api_models.FieldError

	if req.DeviceID == "" {
		fieldErrors = append(fieldErrors, api_models.FieldError{Field: "deviceId", Message: "device ID is required"})
	}
	if req.Temperature == nil {
		fieldErrors = append(fieldErrors, api_models.FieldError{Field: "temperature", Message: "temperature must be a number"})
	}
	if req.Humidity == nil {
		fieldErrors = append(fieldErrors, api_models.FieldError{Field: "humidity", Message: "humidity must be a number"})
	}
	if req.Light == nil {
		fieldErrors = append(fieldErrors, api_models.FieldError{Field: "light", Message: "light intensity must be a number"})
	}
	if req.Ultrasonic == nil {
		fieldErrors = append(fieldErrors, api_models.FieldError{Field: "ultrasonic", Message: "ultrasonic distance must be a number"})
	}

	return fieldErrors
}

// CreateReading handles sensor data ingestion
func (h *SensorController) CreateReading(c *gin.Context) {
	var req api_models.SensorDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// Non-numeric measurement values land here as type errors.
		c.JSON(http.StatusBadRequest, gin.H{"errors": []api_models.FieldError{
			{Field: "body", Message: "measurements must be numeric"},
		}})
		return
	}

	if fieldErrors := validateReading(req); len(fieldErrors) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": fieldErrors})
		return
	}

	reading := srdmodels.NewSensorReading(req.DeviceID, *req.Temperature, *req.Humidity,
		*req.Light, *req.Ultrasonic, req.Timestamp)

	if err := h.sensorRepo.Insert(c.Request.Context(), reading); err != nil {
		h.logger.ErrorWithError(err, "error saving sensor data")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "sensor data saved"})
}

// GetRecentReadings returns up to the 10 most recent readings for a device,
// newest first.
func (h *SensorController) GetRecentReadings(c *gin.Context) {
	deviceID := c.Param("deviceId")

	if h.protectReads {
		// Single-user/device ownership: the token's device must match.
		tokenDevice, err := middleware.GetDeviceFromGinContext(c)
		if err != nil || tokenDevice != deviceID {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}
	}

	readings, err := h.sensorRepo.RecentByDevice(c.Request.Context(), deviceID, interfaces.DefaultRecentLimit)
	if err != nil {
		h.logger.ErrorWithError(err, "error fetching sensor data")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}

	c.JSON(http.StatusOK, readings)
}
