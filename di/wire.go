//go:build wireinject
// +build wireinject

package di

import (
	"time"

	"github.com/google/wire"

	"profitly/config"
	"profitly/infras/otel"
	"profitly/infras/postgres"
	"profitly/infras/redis"
	healthHandler "profitly/internal/handlers/health"
	"profitly/internal/health"
	"profitly/shared/cache"
	"profitly/transport/http"
	"profitly/transport/http/middleware"
	"profitly/transport/http/router"
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var management = wire.NewSet(
	health.NewState,
	health.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	healthHandler.New,
	router.New,
)

func InitializeServer(cfg *config.Config, loc *time.Location) (*http.HTTP, func(), error) {
	wire.Build(
		infrastructures,
		sharedHelpers,
		management,
		middlewares,
		routing,
		http.New,
	)

	return nil, nil, nil
}
