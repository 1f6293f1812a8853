// Package bootstrap is the process entry routine: it fixes the process
// default timezone and then hands the process over to the application
// runtime, translating the outcome into an exit status.
package bootstrap

//go:generate go run go.uber.org/mock/mockgen -source=./bootstrap.go -destination=./mocks/runtime_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"profitly/shared/timezone"
)

// DefaultTimezone is the process-wide default timezone.
const DefaultTimezone = "Asia/Kolkata"

const (
	ExitOK      = 0
	ExitFailure = 1
)

var (
	ErrTimezoneResolution = errors.New("timezone resolution failed")
	ErrRuntimeStartup     = errors.New("runtime startup failed")
	ErrRuntimeStopped     = errors.New("runtime stopped with error")
)

// Runtime is the managed application runtime the process is handed to.
// Start returns once the runtime is serving, or with the reason it could not
// start. Wait blocks until the runtime has shut down.
type Runtime interface {
	Start(ctx context.Context, args []string) error
	Wait() error
}

type Bootstrap struct {
	runtime  Runtime
	timezone string
	logger   *zerolog.Logger

	state atomic.Int32

	mu  sync.Mutex
	err error
}

type Option func(*Bootstrap)

// WithTimezone replaces DefaultTimezone.
func WithTimezone(name string) Option {
	return func(b *Bootstrap) {
		b.timezone = name
	}
}

// WithLogger logs through logger instead of the global zerolog logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(b *Bootstrap) {
		b.logger = &logger
	}
}

func New(runtime Runtime, opts ...Option) *Bootstrap {
	b := &Bootstrap{
		runtime:  runtime,
		timezone: DefaultTimezone,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Run sets the process timezone, starts the runtime with args and blocks
// until it stops. It returns the process exit status.
func Run(ctx context.Context, args []string, runtime Runtime) int {
	return New(runtime).Run(ctx, args)
}

func (b *Bootstrap) Run(ctx context.Context, args []string) int {
	if _, err := timezone.SetDefault(b.timezone); err != nil {
		return b.fail(fmt.Errorf("%w: %w", ErrTimezoneResolution, err), "Failed to set the default timezone")
	}

	b.setState(StateTimezoneSet)
	b.log().Debug().Str("timezone", b.timezone).Msg("Default timezone set")

	b.setState(StateRuntimeStarting)

	if err := b.runtime.Start(ctx, args); err != nil {
		return b.fail(fmt.Errorf("%w: %w", ErrRuntimeStartup, err), "Application failed to start")
	}

	b.setState(StateRuntimeRunning)

	if err := b.runtime.Wait(); err != nil {
		b.setErr(fmt.Errorf("%w: %w", ErrRuntimeStopped, err))
		b.setState(StateStopped)
		b.log().Error().Err(err).Msg("Application stopped with an error")

		return ExitFailure
	}

	b.setState(StateStopped)

	return ExitOK
}

// State is safe to call while Run is blocked.
func (b *Bootstrap) State() State {
	return State(b.state.Load())
}

// Err is the error that ended Run, if any.
func (b *Bootstrap) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.err
}

func (b *Bootstrap) fail(err error, msg string) int {
	b.setErr(err)
	b.setState(StateStartupFailed)
	b.log().WithLevel(zerolog.FatalLevel).Err(err).Msg(msg)

	return ExitFailure
}

func (b *Bootstrap) setState(state State) {
	b.state.Store(int32(state))
}

func (b *Bootstrap) setErr(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.err = err
}

// log resolves the global logger lazily; the runtime replaces it during Start.
func (b *Bootstrap) log() *zerolog.Logger {
	if b.logger != nil {
		return b.logger
	}

	return &log.Logger
}
