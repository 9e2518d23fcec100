package controllers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	controllers "gitlab.com/sensorgrid1/srd.sensor_server/src/production/SRD.ApiService/controllers"
	authservice "gitlab.com/sensorgrid1/srd.sensor_server/src/production/SRD.ApiService/implementation/auth"
	jwtservice "gitlab.com/sensorgrid1/srd.sensor_server/src/production/SRD.ApiService/implementation/jwt"
	"gitlab.com/sensorgrid1/srd.sensor_server/src/production/SRD.ApiService/middleware"
	config "gitlab.com/sensorgrid1/srd.sensor_server/src/production/SRD.Config"
	logger "gitlab.com/sensorgrid1/srd.sensor_server/src/production/SRD.Logger"
	srdmodels "gitlab.com/sensorgrid1/srd.sensor_server/src/production/SRD.Models"
	api_models "gitlab.com/sensorgrid1/srd.sensor_server/src/production/SRD.Models/api"
	auth_models "gitlab.com/sensorgrid1/srd.sensor_server/src/production/SRD.Models/auth"
	interfaces "gitlab.com/sensorgrid1/srd.sensor_server/src/production/SRD.Repository/Interfaces"
)

// memUserRepo is an in-memory UserRepository.
type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*auth_models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*auth_models.User)}
}

func (r *memUserRepo) Create(_ context.Context, user *auth_models.User) (*auth_models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.Username]; exists {
		return nil, interfaces.ErrDuplicateUser
	}
	if user.UserID == "" {
		user.UserID = "user-" + user.Username
	}
	r.users[user.Username] = user
	return user, nil
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (*auth_models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[username]
	if !ok {
		return nil, nil
	}
	return user, nil
}

func (r *memUserRepo) GetAll(_ context.Context) ([]auth_models.UserSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	summaries := make([]auth_models.UserSummary, 0, len(r.users))
	for _, user := range r.users {
		summaries = append(summaries, auth_models.UserSummary{Username: user.Username, DeviceID: user.DeviceID})
	}
	return summaries, nil
}

// memSensorRepo is an in-memory SensorDataRepository. RecentByDevice mirrors
// the storage query: filter by device, newest first, bounded by limit.
type memSensorRepo struct {
	mu       sync.Mutex
	readings []srdmodels.SensorReading
}

func newMemSensorRepo() *memSensorRepo {
	return &memSensorRepo{}
}

func (r *memSensorRepo) Insert(_ context.Context, reading srdmodels.SensorReading) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.readings = append(r.readings, reading)
	return nil
}

func (r *memSensorRepo) InsertMany(_ context.Context, readings []srdmodels.SensorReading) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.readings = append(r.readings, readings...)
	return nil
}

func (r *memSensorRepo) RecentByDevice(_ context.Context, deviceID string, limit int) ([]srdmodels.SensorReading, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := make([]srdmodels.SensorReading, 0)
	for i := len(r.readings) - 1; i >= 0; i-- {
		if r.readings[i].DeviceID == deviceID {
			matched = append(matched, r.readings[i])
		}
	}
	sort.SliceStable(matched, func(a, b int) bool {
		return matched[a].Timestamp.After(matched[b].Timestamp)
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:      "3000",
			StaticDir: "./testdata",
		},
		Auth: config.AuthConfig{
			JWTSecretKey:  "test-secret",
			JWTIssuer:     "srd-test",
			TokenDuration: time.Hour,
			BcryptCost:    bcrypt.MinCost,
		},
		CORS: config.CORSConfig{
			AllowedOrigins:   []string{"http://localhost:3000"},
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           43200,
		},
	}
}

type testEnv struct {
	router     *gin.Engine
	jwtService *jwtservice.Service
	sensorRepo *memSensorRepo
	userRepo   *memUserRepo
}

func newTestEnv(t *testing.T, protectReads bool) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig()
	cfg.Auth.ProtectSensorReads = protectReads

	log := logger.NewLogger(&config.LoggingConfig{Level: "error", Format: "text", Output: "stdout"})

	jwtService := jwtservice.NewService(api_models.TokenConfig{
		SecretKey:     cfg.Auth.JWTSecretKey,
		TokenDuration: cfg.Auth.TokenDuration,
		Issuer:        cfg.Auth.JWTIssuer,
	})
	userRepo := newMemUserRepo()
	sensorRepo := newMemSensorRepo()
	authService := authservice.NewAuthService(userRepo, jwtService, cfg.Auth.BcryptCost)
	authMiddleware := middleware.NewAuthMiddleware(jwtService)

	router := gin.New()
	controllers.SetupRoutes(router, cfg,
		controllers.NewAuthController(authService, log),
		controllers.NewSensorController(sensorRepo, log, authMiddleware, protectReads),
		controllers.NewHealthController(okPinger{}),
	)

	return &testEnv{
		router:     router,
		jwtService: jwtService,
		sensorRepo: sensorRepo,
		userRepo:   userRepo,
	}
}

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

func (e *testEnv) do(t *testing.T, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) createUser(t *testing.T, username, password, deviceID string) {
	t.Helper()

	body := `{"username":"` + username + `","password":"` + password + `","deviceId":"` + deviceID + `"}`
	w := e.do(t, http.MethodPost, "/create-user", body, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func (e *testEnv) login(t *testing.T, username, password string) string {
	t.Helper()

	body := `{"username":"` + username + `","password":"` + password + `"}`
	w := e.do(t, http.MethodPost, "/login", body, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp api_models.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}
