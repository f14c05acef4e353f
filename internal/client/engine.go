package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-redis/redis/v9"
	"github.com/pkg/errors"
	"waterme/internal/misc"
	"waterme/internal/model"
)

// Sensor kinds the evaluation engine reports availability for.
const (
	SensorKindTemperature     = "temperature"
	SensorKindHumidity        = "humidity"
	SensorKindSoilMoisture    = "soil-moisture"
	SensorKindExternalWeather = "external-weather"
)

var ErrEngineUnavailable = errors.New("evaluation engine unavailable")

type engineVerdictRequest struct {
	Location string         `json:"location"`
	Sensors  []model.Sensor `json:"sensors"`
}

type engineVerdictResponse struct {
	ShouldWater bool `json:"should_water"`
}

type engineAvailabilityRequest struct {
	Kind    string         `json:"kind"`
	Sensors []model.Sensor `json:"sensors"`
}

type engineAvailabilityResponse struct {
	Available bool `json:"available"`
}

type engineVersionResponse struct {
	Version string `json:"version"`
}

func (c Client) engineDo(ctx context.Context, method string, path string, reqBody any, out any) error {
	do := func() (any, error) {
		var bodyReader io.Reader
		if reqBody != nil {
			body, err := json.Marshal(reqBody)
			if err != nil {
				return nil, errors.Wrapf(err, "engineDo: error marshalling request for path: %s", path)
			}
			bodyReader = bytes.NewReader(body)
		}

		req, err := newRequest(ctx, method, c.EngineURL+path, bodyReader)
		if err != nil {
			return nil, errors.Wrapf(err, "engineDo: error creating HTTP request for path: %s", path)
		}
		if reqBody != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.Do(req)
		if err != nil {
			return nil, errors.Wrapf(err, "engineDo: error doing request for path: %s", path)
		}
		defer func() {
			if err := resp.Body.Close(); err != nil {
				c.Logger.Errorf("engineDo: error closing response body, path: %s, err: %v", path, err)
			}
		}()

		respBody, err := io.ReadAll(http.MaxBytesReader(nil, resp.Body, 300000))
		if err != nil {
			return nil, errors.Wrapf(err, "engineDo: error reading response body, path: %s", path)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, errors.Errorf("engineDo: engine returned status: %s, path: %s, body: %s",
				resp.Status, path, misc.StringLimit(string(respBody), 2000))
		}
		return respBody, nil
	}

	var res any
	var err error
	if c.EngineBreaker != nil {
		res, err = c.EngineBreaker.Execute(do)
	} else {
		res, err = do()
	}
	if err != nil {
		return errors.Wrapf(ErrEngineUnavailable, "path: %s, err: %v", path, err)
	}

	return errors.Wrapf(json.Unmarshal(res.([]byte), out),
		"engineDo: error unmarshalling response body, path: %s", path)
}

// EngineVerdict asks the engine for its watering determination for one
// controller's sensor set.
func (c Client) EngineVerdict(ctx context.Context, sensors []model.Sensor, location string) (bool, error) {
	var resp engineVerdictResponse
	err := c.engineDo(ctx, http.MethodPost, "/api/verdict", engineVerdictRequest{
		Location: location,
		Sensors:  sensors,
	}, &resp)
	return resp.ShouldWater, err
}

func (c Client) EngineSensorAvailable(ctx context.Context, sensors []model.Sensor, kind string) (bool, error) {
	var resp engineAvailabilityResponse
	err := c.engineDo(ctx, http.MethodPost, "/api/availability", engineAvailabilityRequest{
		Kind:    kind,
		Sensors: sensors,
	}, &resp)
	return resp.Available, err
}

// EngineVersion reports the engine build version. The value changes only on
// engine deploys, so it is served from the Redis cache when possible.
func (c Client) EngineVersion(ctx context.Context) (string, error) {
	cacheKey := "ENG-VERSION-" + c.EngineURL
	if c.Redis != nil {
		cached, err := c.Redis.Get(ctx, cacheKey).Result()
		if err == nil {
			c.Logger.Debugf("EngineVersion: cache found, key: %s", cacheKey)
			return cached, nil
		}
		if err != redis.Nil {
			c.Logger.Errorf("EngineVersion: error getting Redis cache with key: %s, err: %v", cacheKey, err)
		}
	}

	var resp engineVersionResponse
	if err := c.engineDo(ctx, http.MethodGet, "/api/version", nil, &resp); err != nil {
		return "", err
	}

	if c.Redis != nil {
		if err := c.Redis.Set(ctx, cacheKey, resp.Version, 10*time.Minute).Err(); err != nil {
			c.Logger.Errorf("EngineVersion: error setting Redis cache with key: %s, err: %v", cacheKey, err)
		}
	}
	return resp.Version, nil
}
