package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"profitly/internal/handlers/health"
	"profitly/shared/failure"
	"profitly/transport/http/middleware"
	"profitly/transport/http/response"
)

type DomainHandlers struct {
	Health health.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
	Middleware     middleware.AppMiddleware
}

func (r *Router) SetupRoutes(router chi.Router) {
	router.Use(
		r.Middleware.RequestID,
		chiMiddleware.RealIP,
		r.Middleware.AccessLog,
		chiMiddleware.Recoverer,
		r.Middleware.Tracing,
		r.Middleware.CORS(),
		r.Middleware.RateLimit(),
	)

	router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.WithError(w, failure.RouteNotFound)
	})

	router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.WithError(w, failure.MethodNotAllowed)
	})

	r.DomainHandlers.Health.Router(router)
}

func New(domainHandlers DomainHandlers, appMiddleware middleware.AppMiddleware) Router {
	return Router{
		DomainHandlers: domainHandlers,
		Middleware:     appMiddleware,
	}
}
