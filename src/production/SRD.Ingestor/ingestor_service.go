package ingestor

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	config "gitlab.com/sensorgrid1/srd.sensor_server/src/production/SRD.Config"
	logger "gitlab.com/sensorgrid1/srd.sensor_server/src/production/SRD.Logger"
	srdmodels "gitlab.com/sensorgrid1/srd.sensor_server/src/production/SRD.Models"
	interfaces "gitlab.com/sensorgrid1/srd.sensor_server/src/production/SRD.Repository/Interfaces"
)

var errIncompleteReading = errors.New("reading is missing required measurements")

// payload is the JSON body devices publish to sensors/<deviceId>. Pointers
// so missing measurements are rejected rather than zero-filled.
type payload struct {
	DeviceID    string     `json:"deviceId"`
	Temperature *float64   `json:"temperature"`
	Humidity    *float64   `json:"humidity"`
	Light       *float64   `json:"light"`
	Ultrasonic  *float64   `json:"ultrasonic"`
	Timestamp   *time.Time `json:"timestamp"`
}

// Ingestor subscribes to the sensor topic and batches validated readings
// into the sensor repository.
type Ingestor struct {
	cfg        *config.Config
	sensorRepo interfaces.SensorDataRepository
	log        *logger.Logger
	client     mqtt.Client
	msgCh      chan srdmodels.SensorReading
	wg         sync.WaitGroup
}

func New(cfg *config.Config, sensorRepo interfaces.SensorDataRepository, log *logger.Logger) *Ingestor {
	return &Ingestor{
		cfg:        cfg,
		sensorRepo: sensorRepo,
		log:        log,
		msgCh:      make(chan srdmodels.SensorReading, 4096),
	}
}

func (i *Ingestor) Start(ctx context.Context) error {
	opts := mqtt.NewClientOptions().
		AddBroker(i.cfg.GetMQTTBrokerURL()).
		SetClientID(i.cfg.MQTT.ClientID).
		SetOrderMatters(false).
		SetKeepAlive(i.cfg.MQTT.KeepAlive).
		SetPingTimeout(i.cfg.MQTT.PingTimeout).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetCleanSession(false)

	if i.cfg.MQTT.BrokerUser != "" {
		opts.SetUsername(i.cfg.MQTT.BrokerUser)
		opts.SetPassword(i.cfg.MQTT.BrokerPass)
	}

	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		i.log.ErrorWithError(err, "mqtt connection lost")
	}
	opts.OnConnect = func(c mqtt.Client) {
		i.log.WithField("topic", i.cfg.MQTT.Topic).Info("mqtt connected, subscribing")
		if token := c.Subscribe(i.cfg.MQTT.Topic, 1, i.onMessage); token.Wait() && token.Error() != nil {
			i.log.ErrorWithError(token.Error(), "mqtt subscribe error")
		}
	}

	i.client = mqtt.NewClient(opts)
	if tk := i.client.Connect(); tk.Wait() && tk.Error() != nil {
		return tk.Error()
	}

	i.wg.Add(1)
	go func() {
		defer i.wg.Done()
		i.batchWriter(ctx)
	}()

	return nil
}

func (i *Ingestor) Stop() {
	if i.client != nil && i.client.IsConnected() {
		i.client.Disconnect(500)
	}
	close(i.msgCh)
	i.wg.Wait()
}

func (i *Ingestor) onMessage(_ mqtt.Client, m mqtt.Message) {
	reading, err := parseReading(m.Topic(), m.Payload())
	if err != nil {
		i.log.WithField("topic", m.Topic()).WithError(err).Warn("dropping invalid reading")
		return
	}

	i.msgCh <- reading
}

// parseReading validates a published message. The device identifier comes
// from the topic (sensors/<deviceId>); an explicit deviceId in the payload
// wins when both are present.
func parseReading(topic string, raw []byte) (srdmodels.SensorReading, error) {
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return srdmodels.SensorReading{}, err
	}

	deviceID := p.DeviceID
	if deviceID == "" {
		parts := strings.Split(topic, "/")
		if len(parts) >= 2 && parts[1] != "" {
			deviceID = parts[1]
		}
	}
	if deviceID == "" {
		return srdmodels.SensorReading{}, errIncompleteReading
	}

	if p.Temperature == nil || p.Humidity == nil || p.Light == nil || p.Ultrasonic == nil {
		return srdmodels.SensorReading{}, errIncompleteReading
	}

	return srdmodels.NewSensorReading(deviceID, *p.Temperature, *p.Humidity, *p.Light, *p.Ultrasonic, p.Timestamp), nil
}

func (i *Ingestor) batchWriter(ctx context.Context) {
	batch := make([]srdmodels.SensorReading, 0, i.cfg.MQTT.BatchSize)
	timer := time.NewTimer(i.cfg.MQTT.BatchWindow)
	defer timer.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := i.sensorRepo.InsertMany(ctx, batch); err != nil {
			i.log.WithField("count", len(batch)).WithError(err).Error("batch insert failed")
		}
		batch = batch[:0]
	}

	for {
		select {
		case reading, ok := <-i.msgCh:
			if !ok {
				flush()
				return
			}
			batch = append(batch, reading)
			if len(batch) >= i.cfg.MQTT.BatchSize {
				flush()
				if !timer.Stop() {
					<-timer.C
				}
				timer.Reset(i.cfg.MQTT.BatchWindow)
			}
		case <-timer.C:
			flush()
			timer.Reset(i.cfg.MQTT.BatchWindow)
		case <-ctx.Done():
			flush()
			return
		}
	}
}
