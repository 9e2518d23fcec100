package main

import (
	"context"
	"flag"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "gitlab.com/sensorgrid1/srd.sensor_server/src/production/SRD.Config"
	logger "gitlab.com/sensorgrid1/srd.sensor_server/src/production/SRD.Logger"
	api_models "gitlab.com/sensorgrid1/srd.sensor_server/src/production/SRD.Models/api"
	"gitlab.com/sensorgrid1/srd.sensor_server/src/production/SRD.Simulator/client"
)

func main() {
	apiURL := flag.String("api-url", "http://localhost:3000", "sensor server base URL")
	deviceID := flag.String("device-id", "dev-1", "device identifier to report as")
	interval := flag.Duration("interval", 5*time.Second, "delay between readings")
	count := flag.Int("count", 0, "number of readings to send (0 = run until interrupted)")
	flag.Parse()

	log := logger.NewLogger(&config.LoggingConfig{Level: "info", Format: "text", Output: "stdout"})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	apiClient := client.NewAPIClient(*apiURL)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	log.WithField("device", *deviceID).Info("simulator starting")

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	sent := 0
	for {
		reading := nextReading(rng, *deviceID)
		if err := apiClient.PostReading(ctx, reading); err != nil {
			log.WithError(err).Warn("failed to post reading")
		} else {
			log.WithField("device", *deviceID).Debug("reading posted")
			sent++
		}

		if *count > 0 && sent >= *count {
			log.WithField("sent", sent).Info("simulator done")
			return
		}

		select {
		case <-ctx.Done():
			log.Info("simulator stopping")
			return
		case <-ticker.C:
		}
	}
}

// nextReading produces a plausible sample: room temperature with jitter,
// mid-range humidity and light, ultrasonic distance in centimeters.
func nextReading(rng *rand.Rand, deviceID string) api_models.SensorDataRequest {
	temperature := 21.0 + rng.Float64()*4.0
	humidity := 35.0 + rng.Float64()*20.0
	light := 200.0 + rng.Float64()*400.0
	ultrasonic := 5.0 + rng.Float64()*45.0

	return api_models.SensorDataRequest{
		DeviceID:    deviceID,
		Temperature: &temperature,
		Humidity:    &humidity,
		Light:       &light,
		Ultrasonic:  &ultrasonic,
	}
}
