// Package handler is the serverless entry point. Each instance runs the
// same startup sequence as cmd/app once, on its first request, and then
// serves every request through the composed router.
package handler

import (
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/rs/zerolog/log"

	"profitly/bootstrap"
	"profitly/config"
	"profitly/di"
	"profitly/internal/health"
	"profitly/shared/logger"
	"profitly/shared/timezone"
	"profitly/transport/http/response"
)

var (
	once    sync.Once
	served  http.Handler
	initErr error
)

func Handler(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		served, initErr = newHandler(config.DefaultEnvFile)
	})

	serve(w, r, served, initErr)
}

func serve(w http.ResponseWriter, r *http.Request, h http.Handler, err error) {
	if err != nil {
		response.WithUnhealthy(w)

		return
	}

	r.RequestURI = r.URL.String()

	h.ServeHTTP(w, r)
}

// newHandler sets the process timezone first, then builds the component
// graph. Components live for the lifetime of the instance.
func newHandler(envFile string) (http.Handler, error) {
	loc, err := timezone.SetDefault(bootstrap.DefaultTimezone)
	if err != nil {
		log.Error().Err(err).Msg("Failed to set the default timezone")

		return nil, fmt.Errorf("%w: %w", bootstrap.ErrTimezoneResolution, err)
	}

	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}

	logger.InitLogger(os.Stdout, cfg.Server.Env)
	logger.SetLogLevel(cfg)

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("Invalid configuration")

		return nil, err
	}

	server, _, err := di.InitializeServer(cfg, loc)
	if err != nil {
		log.Error().Err(err).Msg("Failed to build application components")

		return nil, fmt.Errorf("%w: %w", bootstrap.ErrRuntimeStartup, err)
	}

	// The platform owns the listener; requests arrive already accepted.
	server.State.Set(health.ServerStateReady)

	return server.Handler(), nil
}
