package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"profitly/config"
	"profitly/internal/health"
	"profitly/transport/http/router"
)

const readHeaderTimeout = 10 * time.Second

var ErrNotListening = errors.New("http server is not listening")

type HTTP struct {
	Config *config.Config
	Router router.Router
	State  *health.State

	handlerOnce sync.Once
	handler     http.Handler

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

func New(cfg *config.Config, r router.Router, state *health.State) *HTTP {
	return &HTTP{
		Config: cfg,
		Router: r,
		State:  state,
	}
}

// Handler returns the routed handler, building it on first use.
func (h *HTTP) Handler() http.Handler {
	h.handlerOnce.Do(func() {
		mux := chi.NewRouter()
		h.Router.SetupRoutes(mux)
		h.handler = mux
	})

	return h.handler
}

// Listen binds the configured address. Bind failures are reported here,
// before anything is served.
func (h *HTTP) Listen() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.listener != nil {
		return nil
	}

	address := net.JoinHostPort(h.Config.Server.Host, h.Config.Server.Port)

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("binding %s: %w", address, err)
	}

	h.listener = listener
	h.server = &http.Server{
		Handler:           h.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	h.State.Set(health.ServerStateReady)

	return nil
}

// Addr is the bound address, useful when the configured port is 0.
func (h *HTTP) Addr() string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.listener == nil {
		return ""
	}

	return h.listener.Addr().String()
}

// Serve blocks serving requests on the bound listener until Shutdown.
func (h *HTTP) Serve() error {
	h.mu.Lock()
	server, listener := h.server, h.listener
	h.mu.Unlock()

	if server == nil {
		return ErrNotListening
	}

	log.Info().Str("address", listener.Addr().String()).Msg("Starting up HTTP server.")

	if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving http: %w", err)
	}

	return nil
}

// Shutdown drains the server. Outside development the server first stays up
// for the grace period (readiness reports not ready so load balancers stop
// routing), then the cleanup period, then stops accepting connections.
func (h *HTTP) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	server := h.server
	h.mu.Unlock()

	defer h.State.Set(health.ServerStateStopped)

	if server == nil {
		return nil
	}

	if h.Config.IsDevelopment() {
		log.Warn().Msg("Development environment, shutting down now.")

		return h.closeServer(ctx, server)
	}

	shutdownConfig := h.Config.Server.Shutdown

	log.Info().Int64("seconds", shutdownConfig.GracePeriodSeconds).Msg("Entering grace period.")
	h.State.Set(health.ServerStateInGracePeriod)

	if err := wait(ctx, time.Duration(shutdownConfig.GracePeriodSeconds)*time.Second); err != nil {
		return errors.Join(err, server.Close())
	}

	log.Info().Int64("seconds", shutdownConfig.CleanupPeriodSeconds).Msg("Entering cleanup period.")
	h.State.Set(health.ServerStateInCleanupPeriod)

	if err := wait(ctx, time.Duration(shutdownConfig.CleanupPeriodSeconds)*time.Second); err != nil {
		return errors.Join(err, server.Close())
	}

	if err := h.closeServer(ctx, server); err != nil {
		return err
	}

	log.Info().Msg("Cleaning up completed. Shutting down now.")

	return nil
}

func (h *HTTP) closeServer(ctx context.Context, server *http.Server) error {
	if err := server.Shutdown(ctx); err != nil {
		_ = server.Close()

		return fmt.Errorf("shutting down http server: %w", err)
	}

	return nil
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
