package health

import (
	"context"
	"sync"
	"time"

	goRedis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"profitly/infras/postgres"
	"profitly/infras/redis"
)

const defaultCheckTimeout = 2 * time.Second

type Status string

const (
	StatusUp   Status = "UP"
	StatusDown Status = "DOWN"
)

// Indicator is a component that can report whether it is usable.
type Indicator interface {
	Name() string
	Check(ctx context.Context) error
}

type Component struct {
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
}

type Report struct {
	Status     Status               `json:"status"`
	Components map[string]Component `json:"components,omitempty"`
}

type Registry struct {
	indicators []Indicator
	timeout    time.Duration
}

// New registers indicators for the infrastructure that was configured.
// Nil components are disabled and left out.
func New(conn *postgres.Connection, client *goRedis.Client) *Registry {
	var indicators []Indicator

	if conn != nil {
		indicators = append(indicators, conn)
	}

	if client != nil {
		indicators = append(indicators, redis.NewIndicator(client))
	}

	return NewRegistry(defaultCheckTimeout, indicators...)
}

func NewRegistry(timeout time.Duration, indicators ...Indicator) *Registry {
	if timeout <= 0 {
		timeout = defaultCheckTimeout
	}

	return &Registry{
		indicators: indicators,
		timeout:    timeout,
	}
}

// Names lists the registered indicators in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.indicators))
	for i, indicator := range r.indicators {
		names[i] = indicator.Name()
	}

	return names
}

// Check runs every indicator concurrently, each bounded by the registry
// timeout. The report is DOWN when any indicator fails.
func (r *Registry) Check(ctx context.Context) Report {
	report := Report{
		Status:     StatusUp,
		Components: make(map[string]Component, len(r.indicators)),
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	for _, indicator := range r.indicators {
		wg.Add(1)

		go func(indicator Indicator) {
			defer wg.Done()

			checkCtx, cancel := context.WithTimeout(ctx, r.timeout)
			defer cancel()

			component := Component{Status: StatusUp}
			if err := indicator.Check(checkCtx); err != nil {
				log.Warn().Err(err).Str("component", indicator.Name()).Msg("Health check failed")

				component = Component{Status: StatusDown, Error: err.Error()}
			}

			mu.Lock()
			defer mu.Unlock()

			report.Components[indicator.Name()] = component
			if component.Status == StatusDown {
				report.Status = StatusDown
			}
		}(indicator)
	}

	wg.Wait()

	return report
}
