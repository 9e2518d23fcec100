package controllers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	srdmodels "gitlab.com/sensorgrid1/srd.sensor_server/src/production/SRD.Models"
	api_models "gitlab.com/sensorgrid1/srd.sensor_server/src/production/SRD.Models/api"
)

func TestHealthLive(t *testing.T) {
	env := newTestEnv(t, false)
	w := env.do(t, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRootRedirectsToLogin(t *testing.T) {
	env := newTestEnv(t, false)
	w := env.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/public/login.html", w.Header().Get("Location"))
}

// End-to-end scenario: create user, login, reject bad password, ingest one
// reading, read it back.
func TestUserAndSensorDataScenario(t *testing.T) {
	env := newTestEnv(t, false)

	env.createUser(t, "alice", "pw123", "dev-1")
	token := env.login(t, "alice", "pw123")

	claims, err := env.jwtService.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "dev-1", claims.DeviceID)

	w := env.do(t, http.MethodPost, "/login", `{"username":"alice","password":"wrongpw"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/sensor-data",
		`{"deviceId":"dev-1","temperature":22.5,"humidity":40,"light":300,"ultrasonic":15}`, nil)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, "/sensor-data/dev-1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var readings []srdmodels.SensorReading
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &readings))
	require.Len(t, readings, 1)
	assert.Equal(t, "dev-1", readings[0].DeviceID)
	assert.Equal(t, 22.5, readings[0].Temperature)
	assert.Equal(t, 40.0, readings[0].Humidity)
	assert.Equal(t, 300.0, readings[0].Light)
	assert.Equal(t, 15.0, readings[0].Ultrasonic)
	assert.False(t, readings[0].Timestamp.IsZero())
}

func TestCreateUserValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing username", `{"password":"pw123","deviceId":"dev-1"}`},
		{"missing password", `{"username":"alice","deviceId":"dev-1"}`},
		{"missing device", `{"username":"alice","password":"pw123"}`},
		{"empty body", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, false)
			w := env.do(t, http.MethodPost, "/create-user", tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "all fields are required")
		})
	}
}

func TestCreateUserDuplicate(t *testing.T) {
	env := newTestEnv(t, false)
	env.createUser(t, "alice", "pw123", "dev-1")

	// Same username with different password and device still collides.
	w := env.do(t, http.MethodPost, "/create-user",
		`{"username":"alice","password":"other","deviceId":"dev-2"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "user already exists")
}

func TestListUsers(t *testing.T) {
	env := newTestEnv(t, false)
	env.createUser(t, "alice", "pw123", "dev-1")
	env.createUser(t, "bob", "pw456", "dev-2")

	w := env.do(t, http.MethodGet, "/users", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var users []map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	assert.Len(t, users, 2)
	for _, user := range users {
		assert.NotContains(t, user, "password")
	}
}

func TestRefreshToken(t *testing.T) {
	env := newTestEnv(t, false)
	env.createUser(t, "alice", "pw123", "dev-1")
	token := env.login(t, "alice", "pw123")

	t.Run("valid token refreshes", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/refresh-token", `{"refreshToken":"`+token+`"}`, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp api_models.TokenResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

		claims, err := env.jwtService.Validate(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, "dev-1", claims.DeviceID)
	})

	t.Run("missing token", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/refresh-token", `{}`, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/refresh-token", `{"refreshToken":"not-a-token"}`, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestSensorDataValidation(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{
			name:      "missing temperature",
			body:      `{"deviceId":"dev-1","humidity":40,"light":300,"ultrasonic":15}`,
			wantField: "temperature",
		},
		{
			name:      "missing humidity",
			body:      `{"deviceId":"dev-1","temperature":22.5,"light":300,"ultrasonic":15}`,
			wantField: "humidity",
		},
		{
			name:      "missing light",
			body:      `{"deviceId":"dev-1","temperature":22.5,"humidity":40,"ultrasonic":15}`,
			wantField: "light",
		},
		{
			name:      "missing ultrasonic",
			body:      `{"deviceId":"dev-1","temperature":22.5,"humidity":40,"light":300}`,
			wantField: "ultrasonic",
		},
		{
			name:      "missing device id",
			body:      `{"temperature":22.5,"humidity":40,"light":300,"ultrasonic":15}`,
			wantField: "deviceId",
		},
		{
			name:      "non-numeric measurement",
			body:      `{"deviceId":"dev-1","temperature":"warm","humidity":40,"light":300,"ultrasonic":15}`,
			wantField: "numeric",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, false)
			w := env.do(t, http.MethodPost, "/sensor-data", tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantField)

			// A rejected reading is never partially persisted.
			stored, err := env.sensorRepo.RecentByDevice(context.Background(), "dev-1", 10)
			require.NoError(t, err)
			assert.Empty(t, stored)
		})
	}
}

func TestRecentReadingsOrderAndLimit(t *testing.T) {
	env := newTestEnv(t, false)

	// Post 12 readings with explicit ascending timestamps.
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		ts := base.Add(time.Duration(i) * time.Minute).Format(time.RFC3339)
		body := fmt.Sprintf(`{"deviceId":"dev-1","temperature":%d,"humidity":40,"light":300,"ultrasonic":15,"timestamp":"%s"}`, 20+i, ts)
		w := env.do(t, http.MethodPost, "/sensor-data", body, nil)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	// Another device's readings must not leak into the result.
	w := env.do(t, http.MethodPost, "/sensor-data",
		`{"deviceId":"dev-2","temperature":99,"humidity":40,"light":300,"ultrasonic":15}`, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodGet, "/sensor-data/dev-1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var readings []srdmodels.SensorReading
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &readings))
	require.Len(t, readings, 10)

	for i := range readings {
		assert.Equal(t, "dev-1", readings[i].DeviceID)
		if i > 0 {
			assert.False(t, readings[i].Timestamp.After(readings[i-1].Timestamp),
				"readings must be ordered newest first")
		}
	}
	// Newest posted reading comes first.
	assert.Equal(t, 31.0, readings[0].Temperature)
}

func TestRecentReadingsEmptyDevice(t *testing.T) {
	env := newTestEnv(t, false)

	w := env.do(t, http.MethodGet, "/sensor-data/ghost", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestProtectedSensorReads(t *testing.T) {
	env := newTestEnv(t, true)
	env.createUser(t, "alice", "pw123", "dev-1")
	token := env.login(t, "alice", "pw123")

	t.Run("no token", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/sensor-data/dev-1", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/sensor-data/dev-1", "", map[string]string{
			"Authorization": "Bearer not-a-token",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("token for another device", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/sensor-data/dev-2", "", map[string]string{
			"Authorization": "Bearer " + token,
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("matching token", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/sensor-data/dev-1", "", map[string]string{
			"Authorization": "Bearer " + token,
		})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("bare token without Bearer prefix", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/sensor-data/dev-1", "", map[string]string{
			"Authorization": token,
		})
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
