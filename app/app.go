// Package app is the managed application runtime. It turns the process
// arguments and environment into configuration, builds the component graph
// through a composition root, serves it and shuts it down gracefully.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"profitly/config"
	"profitly/shared/logger"
	"profitly/shared/timezone"
	"profitly/transport/http"
)

// Version is stamped at build time with -ldflags "-X profitly/app.Version=...".
var Version = "dev"

// shutdownSlack is added on top of the configured grace and cleanup periods
// before a shutdown is forced.
const shutdownSlack = 10 * time.Second

var (
	ErrAlreadyStarted = errors.New("runtime already started")
	ErrNotStarted     = errors.New("runtime not started")
)

// Root builds the component graph for cfg and returns the server together
// with the cleanup of everything it opened.
type Root func(cfg *config.Config, loc *time.Location) (*http.HTTP, func(), error)

type Runtime struct {
	root    Root
	name    string
	logOut  io.Writer
	cliOut  io.Writer
	signals []os.Signal

	mu        sync.Mutex
	ctx       context.Context
	cfg       *config.Config
	server    *http.HTTP
	cleanup   func()
	startedAt time.Time
	serveErr  chan error
	finished  bool

	stop     chan struct{}
	stopOnce sync.Once

	waitOnce sync.Once
	waitErr  error
}

type Option func(*Runtime)

// WithLogOutput writes logs to w instead of stdout.
func WithLogOutput(w io.Writer) Option {
	return func(r *Runtime) {
		r.logOut = w
	}
}

// WithCLIOutput writes usage and version output to w instead of stdout.
func WithCLIOutput(w io.Writer) Option {
	return func(r *Runtime) {
		r.cliOut = w
	}
}

// WithName sets the program name shown in usage output.
func WithName(name string) Option {
	return func(r *Runtime) {
		r.name = name
	}
}

// WithSignals replaces the signals that trigger a graceful shutdown.
func WithSignals(signals ...os.Signal) Option {
	return func(r *Runtime) {
		r.signals = signals
	}
}

func New(root Root, opts ...Option) *Runtime {
	r := &Runtime{
		root:    root,
		name:    "profitly",
		logOut:  os.Stdout,
		cliOut:  os.Stdout,
		signals: []os.Signal{os.Interrupt, syscall.SIGTERM},
		stop:    make(chan struct{}),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Start parses args, loads and validates the configuration, builds the
// component graph and binds the HTTP listener. It returns once requests can
// be accepted; serving continues in the background until Wait ends it.
// When args only ask for help or the version, Start prints it and returns
// nil without serving, and Wait returns immediately.
func (r *Runtime) Start(ctx context.Context, args []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.server != nil || r.finished {
		return ErrAlreadyStarted
	}

	begin := time.Now()

	flags, err := ParseFlags(r.name, Version, args, r.cliOut)

	var exit *ExitRequest
	if errors.As(err, &exit) && exit.Code == 0 {
		r.finished = true

		return nil
	}

	if err != nil {
		return err
	}

	cfg, err := config.Load(flags.EnvFile)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	flags.Apply(cfg)

	logger.InitLogger(r.logOut, cfg.Server.Env)
	logger.SetLogLevel(cfg)

	if err := cfg.Validate(); err != nil {
		return err
	}

	loc := timezone.GetLocation()

	log.Info().
		Str("app", cfg.App.Name).
		Str("version", cfg.App.Version).
		Str("env", cfg.Server.Env).
		Str("timezone", loc.String()).
		Msg("Starting application")

	server, cleanup, err := r.root(cfg, loc)
	if err != nil {
		return fmt.Errorf("building application components: %w", err)
	}

	if err := server.Listen(); err != nil {
		cleanup()

		return err
	}

	r.ctx = ctx
	r.cfg = cfg
	r.server = server
	r.cleanup = cleanup
	r.startedAt = timezone.Now()
	r.serveErr = make(chan error, 1)

	go func() {
		r.serveErr <- server.Serve()
	}()

	log.Info().
		Str("address", server.Addr()).
		Dur("startup", time.Since(begin)).
		Msgf("Started %s", cfg.App.Name)

	return nil
}

// Wait blocks until a shutdown signal, cancellation of the context given to
// Start, a call to Shutdown, or the server stopping on its own. It then
// shuts the server down and releases every component. Later calls return
// the result of the first one.
func (r *Runtime) Wait() error {
	r.mu.Lock()
	server, finished := r.server, r.finished
	r.mu.Unlock()

	if finished {
		return nil
	}

	if server == nil {
		return ErrNotStarted
	}

	r.waitOnce.Do(func() {
		r.waitErr = r.wait()
	})

	return r.waitErr
}

func (r *Runtime) wait() error {
	r.mu.Lock()
	ctx, server, serveErr := r.ctx, r.server, r.serveErr
	r.mu.Unlock()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, r.signals...)
	defer signal.Stop(signals)

	select {
	case err := <-serveErr:
		r.cleanup()

		if err == nil {
			return nil
		}

		log.Error().Err(err).Msg("HTTP server stopped unexpectedly")

		return err
	case sig := <-signals:
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case <-ctx.Done():
		log.Info().Msg("Context cancelled, shutting down")
	case <-r.stop:
		log.Info().Msg("Shutdown requested")
	}

	return r.shutdown(server, serveErr)
}

// Shutdown makes Wait begin a graceful shutdown. It is safe to call more
// than once.
func (r *Runtime) Shutdown() {
	r.stopOnce.Do(func() {
		close(r.stop)
	})
}

// Started is the time Start completed, zero before that.
func (r *Runtime) Started() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.startedAt
}

// Addr is the bound listener address, empty before Start.
func (r *Runtime) Addr() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.server == nil {
		return ""
	}

	return r.server.Addr()
}

func (r *Runtime) shutdown(server *http.HTTP, serveErr <-chan error) error {
	periods := time.Duration(r.cfg.Server.Shutdown.GracePeriodSeconds+r.cfg.Server.Shutdown.CleanupPeriodSeconds) * time.Second

	ctx, cancel := context.WithTimeout(context.Background(), periods+shutdownSlack)
	defer cancel()

	err := server.Shutdown(ctx)
	if err != nil {
		log.Error().Err(err).Msg("HTTP server did not shut down cleanly")
	}

	if serr := <-serveErr; serr != nil {
		err = errors.Join(err, serr)
	}

	r.cleanup()

	log.Info().Msg("Application stopped")

	return err
}
