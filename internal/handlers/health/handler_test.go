package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profitly/config"
	"profitly/infras/otel/mocks"
	healthHandler "profitly/internal/handlers/health"
	"profitly/internal/health"
)

type stubIndicator struct {
	err error
}

func (s stubIndicator) Name() string { return "postgres" }

func (s stubIndicator) Check(context.Context) error { return s.err }

func newRouter(t *testing.T, state *health.State, indicators ...health.Indicator) http.Handler {
	t.Helper()

	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.App.Name = "profitly"
	cfg.App.Version = "1.0.0"
	cfg.Server.Env = "staging"

	handler := healthHandler.New(health.NewRegistry(time.Second, indicators...), state, cfg, loc, mocks.NewOtel())

	router := chi.NewRouter()
	handler.Router(router)

	return router
}

func get(router http.Handler, path string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, path, nil))

	return recorder
}

func readyState() *health.State {
	state := health.NewState()
	state.Set(health.ServerStateReady)

	return state
}

func TestHealth(t *testing.T) {
	up := get(newRouter(t, readyState(), stubIndicator{}), "/actuator/health")

	assert.Equal(t, http.StatusOK, up.Code)
	assert.JSONEq(t, `{"data":{"status":"UP","components":{"postgres":{"status":"UP"}}}}`, up.Body.String())

	down := get(newRouter(t, readyState(), stubIndicator{err: errors.New("refused")}), "/actuator/health")

	assert.Equal(t, http.StatusServiceUnavailable, down.Code)
	assert.JSONEq(t, `{"data":{"status":"DOWN","components":{"postgres":{"status":"DOWN","error":"refused"}}}}`, down.Body.String())
}

func TestLiveness(t *testing.T) {
	recorder := get(newRouter(t, health.NewState()), "/actuator/health/liveness")

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"data":{"status":"UP"}}`, recorder.Body.String())
}

func TestReadiness(t *testing.T) {
	tests := []struct {
		name       string
		state      health.ServerState
		indicator  stubIndicator
		wantCode   int
		wantSubstr string
	}{
		{name: "ready", state: health.ServerStateReady, wantCode: http.StatusOK, wantSubstr: `"UP"`},
		{name: "starting", state: health.ServerStateStarting, wantCode: http.StatusServiceUnavailable, wantSubstr: "SERVER NOT READY"},
		{name: "grace period", state: health.ServerStateInGracePeriod, wantCode: http.StatusServiceUnavailable, wantSubstr: "SERVER PREPARING TO SHUT DOWN"},
		{name: "cleanup period", state: health.ServerStateInCleanupPeriod, wantCode: http.StatusServiceUnavailable, wantSubstr: "SERVER PREPARING TO SHUT DOWN"},
		{name: "component down", state: health.ServerStateReady, indicator: stubIndicator{err: errors.New("refused")}, wantCode: http.StatusServiceUnavailable, wantSubstr: "SERVER UNHEALTHY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := health.NewState()
			state.Set(tt.state)

			recorder := get(newRouter(t, state, tt.indicator), "/actuator/health/readiness")

			assert.Equal(t, tt.wantCode, recorder.Code)
			assert.Contains(t, recorder.Body.String(), tt.wantSubstr)
		})
	}
}

func TestInfo(t *testing.T) {
	recorder := get(newRouter(t, readyState()), "/actuator/info")
	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Data healthHandler.InfoResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))

	assert.Equal(t, "profitly", body.Data.Name)
	assert.Equal(t, "1.0.0", body.Data.Version)
	assert.Equal(t, "staging", body.Data.Env)
	assert.Equal(t, "Asia/Kolkata", body.Data.Timezone)
	assert.Equal(t, "READY", body.Data.State)
	assert.NotEmpty(t, body.Data.InstanceID)
	assert.True(t, strings.HasSuffix(body.Data.Time, "+05:30"), body.Data.Time)
	assert.True(t, strings.HasSuffix(body.Data.StartedAt, "+05:30"), body.Data.StartedAt)
}
