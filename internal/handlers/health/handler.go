package health

import (
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"profitly/config"
	"profitly/infras/otel"
	"profitly/internal/health"
	"profitly/shared/constant"
	"profitly/transport/http/response"
)

type Handler struct {
	registry   *health.Registry
	state      *health.State
	config     *config.Config
	location   *time.Location
	otel       otel.Otel
	instanceID string
}

type InfoResponse struct {
	Name       string `json:"name"`
	Version    string `json:"version"`
	Env        string `json:"env"`
	InstanceID string `json:"instance_id"`
	Timezone   string `json:"timezone"`
	Time       string `json:"time"`
	StartedAt  string `json:"started_at"`
	Uptime     string `json:"uptime"`
	State      string `json:"state"`
	GoVersion  string `json:"go_version"`
}

type ProbeResponse struct {
	Status health.Status `json:"status"`
}

func New(registry *health.Registry, state *health.State, cfg *config.Config, loc *time.Location, otel otel.Otel) Handler {
	if loc == nil {
		loc = time.UTC
	}

	return Handler{
		registry:   registry,
		state:      state,
		config:     cfg,
		location:   loc,
		otel:       otel,
		instanceID: uuid.NewString(),
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/actuator", func(routerGroup chi.Router) {
		routerGroup.Get("/health", handler.Health)
		routerGroup.Get("/health/liveness", handler.Liveness)
		routerGroup.Get("/health/readiness", handler.Readiness)
		routerGroup.Get("/info", handler.Info)
	})
}

// Health reports the aggregate status of every configured component.
func (handler *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Health")
	defer scope.End()

	report := handler.registry.Check(ctx)
	scope.SetAttribute("health.status", string(report.Status))

	code := http.StatusOK
	if report.Status != health.StatusUp {
		code = http.StatusServiceUnavailable
	}

	response.WithJSON(w, code, report)
}

// Liveness is UP for as long as the process can answer.
func (handler *Handler) Liveness(w http.ResponseWriter, _ *http.Request) {
	response.WithJSON(w, http.StatusOK, ProbeResponse{Status: health.StatusUp})
}

// Readiness is UP when the server accepts traffic and every component passes.
func (handler *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Readiness")
	defer scope.End()

	if !handler.state.AcceptingTraffic() {
		state := handler.state.Get()
		scope.AddEvent("not accepting traffic: " + state.String())

		if state == health.ServerStateStarting {
			response.WithNotReady(w)
		} else {
			response.WithPreparingShutdown(w)
		}

		return
	}

	if report := handler.registry.Check(ctx); report.Status != health.StatusUp {
		scope.AddEvent("component down")
		response.WithUnhealthy(w)

		return
	}

	response.WithJSON(w, http.StatusOK, ProbeResponse{Status: health.StatusUp})
}

func (handler *Handler) Info(w http.ResponseWriter, _ *http.Request) {
	now := time.Now().In(handler.location)
	started := handler.state.Created().In(handler.location)

	response.WithJSON(w, http.StatusOK, InfoResponse{
		Name:       handler.config.App.Name,
		Version:    handler.config.App.Version,
		Env:        handler.config.Server.Env,
		InstanceID: handler.instanceID,
		Timezone:   handler.location.String(),
		Time:       now.Format(constant.DateFormat),
		StartedAt:  started.Format(constant.DateFormat),
		Uptime:     now.Sub(started).Truncate(time.Second).String(),
		State:      handler.state.Get().String(),
		GoVersion:  runtime.Version(),
	})
}
