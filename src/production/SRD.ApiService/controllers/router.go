package controllers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	config "gitlab.com/sensorgrid1/srd.sensor_server/src/production/SRD.Config"
)

// SetupRoutes wires CORS, the static dashboard, and all API endpoints.
func SetupRoutes(router *gin.Engine, cfg *config.Config, authCtrl *AuthController, sensorCtrl *SensorController, healthCtrl *HealthController) {
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           time.Duration(cfg.CORS.MaxAge) * time.Second,
	}))

	// Static dashboard assets; the root redirects to the login page.
	router.Static("/public", cfg.Server.StaticDir)
	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/public/login.html")
	})

	authCtrl.RegisterRoutes(router)
	sensorCtrl.RegisterRoutes(router)
	healthCtrl.RegisterRoutes(router)
}
