package http_test

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profitly/config"
	"profitly/infras/otel/mocks"
	healthHandler "profitly/internal/handlers/health"
	"profitly/internal/health"
	transport "profitly/transport/http"
	"profitly/transport/http/middleware"
	"profitly/transport/http/router"
)

func newServer(t *testing.T, cfg *config.Config) *transport.HTTP {
	t.Helper()

	ot := mocks.NewOtel()
	state := health.NewState()
	handler := healthHandler.New(health.NewRegistry(time.Second), state, cfg, time.UTC, ot)
	r := router.New(router.DomainHandlers{Health: handler}, middleware.NewAppMiddleware(ot, cfg, nil))

	return transport.New(cfg, r, state)
}

func localConfig(env string) *config.Config {
	cfg := &config.Config{}
	cfg.App.Name = "profitly"
	cfg.Server.Env = env
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = "0"

	return cfg
}

func TestHandlerRoutes(t *testing.T) {
	server := newServer(t, localConfig("development"))
	handler := server.Handler()

	tests := []struct {
		name     string
		method   string
		path     string
		wantCode int
		wantBody string
	}{
		{name: "liveness", method: http.MethodGet, path: "/actuator/health/liveness", wantCode: http.StatusOK, wantBody: `{"data":{"status":"UP"}}`},
		{name: "unknown route", method: http.MethodGet, path: "/v1/profits", wantCode: http.StatusNotFound, wantBody: `{"error":"resource not found"}`},
		{name: "wrong method", method: http.MethodPost, path: "/actuator/health", wantCode: http.StatusMethodNotAllowed, wantBody: `{"error":"method not allowed"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, tt.wantCode, recorder.Code)
			assert.JSONEq(t, tt.wantBody, recorder.Body.String())
			assert.NotEmpty(t, recorder.Header().Get("X-Request-ID"))
		})
	}
}

func TestServeBeforeListen(t *testing.T) {
	server := newServer(t, localConfig("development"))

	assert.True(t, errors.Is(server.Serve(), transport.ErrNotListening))
	assert.Empty(t, server.Addr())
}

func TestListenServeShutdown(t *testing.T) {
	server := newServer(t, localConfig("production"))

	require.NoError(t, server.Listen())
	assert.Equal(t, health.ServerStateReady, server.State.Get())

	served := make(chan error, 1)
	go func() { served <- server.Serve() }()

	resp, err := http.Get("http://" + server.Addr() + "/actuator/health/readiness")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, server.Shutdown(context.Background()))
	assert.Equal(t, health.ServerStateStopped, server.State.Get())

	select {
	case err := <-served:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after Shutdown")
	}
}

func TestListenAddressInUse(t *testing.T) {
	occupied, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = occupied.Close() })

	_, port, err := net.SplitHostPort(occupied.Addr().String())
	require.NoError(t, err)

	cfg := localConfig("production")
	cfg.Server.Port = port

	err = newServer(t, cfg).Listen()

	assert.ErrorContains(t, err, "binding 127.0.0.1:"+port)
}

func TestShutdownInterruptedGracePeriod(t *testing.T) {
	cfg := localConfig("production")
	cfg.Server.Shutdown.GracePeriodSeconds = 30

	server := newServer(t, cfg)
	require.NoError(t, server.Listen())

	go func() { _ = server.Serve() }()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := server.Shutdown(ctx)

	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, health.ServerStateStopped, server.State.Get())
}
