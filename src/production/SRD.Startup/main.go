package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	controllers "gitlab.com/sensorgrid1/srd.sensor_server/src/production/SRD.ApiService/controllers"
	authservice "gitlab.com/sensorgrid1/srd.sensor_server/src/production/SRD.ApiService/implementation/auth"
	jwtservice "gitlab.com/sensorgrid1/srd.sensor_server/src/production/SRD.ApiService/implementation/jwt"
	"gitlab.com/sensorgrid1/srd.sensor_server/src/production/SRD.ApiService/middleware"
	config "gitlab.com/sensorgrid1/srd.sensor_server/src/production/SRD.Config"
	ingestor "gitlab.com/sensorgrid1/srd.sensor_server/src/production/SRD.Ingestor"
	logger "gitlab.com/sensorgrid1/srd.sensor_server/src/production/SRD.Logger"
	api_models "gitlab.com/sensorgrid1/srd.sensor_server/src/production/SRD.Models/api"
	implementation "gitlab.com/sensorgrid1/srd.sensor_server/src/production/SRD.Repository/Implementation"
	interfaces "gitlab.com/sensorgrid1/srd.sensor_server/src/production/SRD.Repository/Interfaces"
	"gitlab.com/sensorgrid1/srd.sensor_server/src/production/SRD.Startup/health"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.NewLogger(&cfg.Logging)

	userRepo, sensorRepo, storagePinger := connectStorage(cfg, log)

	jwtService := jwtservice.NewService(api_models.TokenConfig{
		SecretKey:     cfg.Auth.JWTSecretKey,
		TokenDuration: cfg.Auth.TokenDuration,
		Issuer:        cfg.Auth.JWTIssuer,
	})
	authService := authservice.NewAuthService(userRepo, jwtService, cfg.Auth.BcryptCost)
	authMiddleware := middleware.NewAuthMiddleware(jwtService)

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	controllers.SetupRoutes(router, cfg,
		controllers.NewAuthController(authService, log.WithComponent("auth")),
		controllers.NewSensorController(sensorRepo, log.WithComponent("sensor"), authMiddleware, cfg.Auth.ProtectSensorReads),
		controllers.NewHealthController(storagePinger),
	)

	if cfg.MQTT.Enabled {
		ing := ingestor.New(cfg, sensorRepo, log.WithComponent("ingestor"))
		if err := ing.Start(context.Background()); err != nil {
			log.FatalWithError(err, "failed to start MQTT ingestor")
		}
		defer ing.Stop()
	}

	log.WithField("port", cfg.Server.Port).Info("server starting")
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.FatalWithError(err, "error starting server")
	}
}

// connectStorage wires the repository implementations for the configured
// backend and returns the readiness pinger alongside them.
func connectStorage(cfg *config.Config, log *logger.Logger) (interfaces.UserRepository, interfaces.SensorDataRepository, controllers.Pinger) {
	switch cfg.Storage.Backend {
	case "postgres":
		db, err := health.ConnectPostgres(cfg.GetPostgresDSN(), 30*time.Second)
		if err != nil {
			log.FatalWithError(err, "error connecting to PostgreSQL")
		}
		if err := implementation.EnsureSchema(context.Background(), db); err != nil {
			log.FatalWithError(err, "error ensuring PostgreSQL schema")
		}
		log.Info("PostgreSQL connected")
		return implementation.NewPostgresUserRepository(db),
			implementation.NewPostgresSensorDataRepository(db),
			health.PostgresPinger{DB: db}

	default: // mongo
		client, err := health.ConnectMongo(cfg.Storage.Mongo.URI, 30*time.Second)
		if err != nil {
			log.FatalWithError(err, "error connecting to MongoDB")
		}
		db := client.Database(cfg.Storage.Mongo.Database)
		userRepo := implementation.NewMongoUserRepository(db.Collection(cfg.Storage.Mongo.UserColl))
		sensorRepo := implementation.NewMongoSensorDataRepository(db.Collection(cfg.Storage.Mongo.SensorDataColl))
		if err := userRepo.EnsureIndexes(context.Background()); err != nil {
			log.FatalWithError(err, "error ensuring user indexes")
		}
		if err := sensorRepo.EnsureIndexes(context.Background()); err != nil {
			log.FatalWithError(err, "error ensuring sensor data indexes")
		}
		log.Info("MongoDB connected")
		return userRepo, sensorRepo, health.MongoPinger{Client: client}
	}
}
