// Package ingest bridges the readings controllers publish over MQTT into the
// store, appending each one to its sensor's log in arrival order.
package ingest

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cenkalti/backoff/v4"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
	"waterme/internal/database"
	"waterme/internal/metrics"
	"waterme/internal/model"
)

const readingTopic = "waterme/reading/+"

type Ingestor struct {
	Client mqtt.Client
	Store  store
	Logger logger
}

type store interface {
	ControllerAppendReading(ctx context.Context, mac string, sensorType string, r model.Reading) error
	ControllerAddSensor(ctx context.Context, mac string, s model.Sensor) error
}

type logger interface {
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Errorf(format string, v ...any)
}

type readingMessage struct {
	MacAddress string `json:"mac_address"`
	SensorType string `json:"sensor_type"`
	Time       string `json:"time"`
	Value      string `json:"value"`
}

// Connect dials the MQTT broker, retrying with exponential backoff.
func Connect(ctx context.Context, brokerURI string, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURI)
	opts.SetClientID(clientID)
	opts.SetCleanSession(true)

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second

	var client mqtt.Client
	err := backoff.Retry(func() error {
		client = mqtt.NewClient(opts)
		if token := client.Connect(); token.Wait() && token.Error() != nil {
			return token.Error()
		}
		return nil
	}, backoff.WithContext(bo, ctx))
	if err != nil {
		return nil, errors.Wrapf(err, "could not establish MQTT connection to %s after retries", brokerURI)
	}
	return client, nil
}

// Run subscribes to the reading topic and blocks until ctx is cancelled.
func (ing Ingestor) Run(ctx context.Context) error {
	token := ing.Client.Subscribe(readingTopic, 1, func(_ mqtt.Client, msg mqtt.Message) {
		if err := ing.handleMessage(ctx, msg.Payload()); err != nil {
			ing.Logger.Errorf("Run: error handling reading message on topic %s, err: %v", msg.Topic(), err)
		}
	})
	if token.Wait() && token.Error() != nil {
		return errors.Wrapf(token.Error(), "error subscribing to topic %s", readingTopic)
	}
	ing.Logger.Infof("Run: subscribed to topic %s", readingTopic)

	<-ctx.Done()

	unsubToken := ing.Client.Unsubscribe(readingTopic)
	unsubToken.Wait()
	ing.Client.Disconnect(250)
	return ctx.Err()
}

func (ing Ingestor) handleMessage(ctx context.Context, payload []byte) error {
	var rm readingMessage
	if err := json.Unmarshal(payload, &rm); err != nil {
		return errors.Wrapf(err, "error unmarshalling reading payload: %s", payload)
	}
	if rm.MacAddress == "" || rm.SensorType == "" {
		return errors.Errorf("reading payload missing mac_address or sensor_type: %s", payload)
	}
	if rm.Time == "" {
		rm.Time = time.Now().Format(time.RFC3339)
	}

	r := model.Reading{Time: rm.Time, Value: rm.Value}
	err := ing.Store.ControllerAppendReading(ctx, rm.MacAddress, rm.SensorType, r)
	if errors.Is(err, database.ErrNoDocumentsModified) {
		// First reading of a new sensor type. Controllers themselves are
		// provisioned out of band: an unknown MAC stays unknown.
		err = ing.Store.ControllerAddSensor(ctx, rm.MacAddress, model.Sensor{
			Type:     rm.SensorType,
			Readings: []model.Reading{r},
		})
		if errors.Is(err, database.ErrNoDocumentsModified) {
			// The sensor appeared between the two writes; append again.
			err = ing.Store.ControllerAppendReading(ctx, rm.MacAddress, rm.SensorType, r)
		}
	}
	if err != nil {
		return errors.Wrapf(err, "error storing reading for Controller %s, sensor type: %s",
			rm.MacAddress, rm.SensorType)
	}

	metrics.ReadingsIngested.Inc()
	ing.Logger.Debugf("handleMessage: stored reading for Controller %s, sensor type: %s", rm.MacAddress, rm.SensorType)
	return nil
}
