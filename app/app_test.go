package app_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profitly/app"
	"profitly/bootstrap"
	"profitly/config"
	"profitly/infras/otel/mocks"
	healthHandler "profitly/internal/handlers/health"
	"profitly/internal/health"
	transport "profitly/transport/http"
	"profitly/transport/http/middleware"
	"profitly/transport/http/router"
)

type fakeRoot struct {
	calls       int
	cleanups    int
	cfg         *config.Config
	cfgLocation string
	err         error
}

func (f *fakeRoot) build(cfg *config.Config, loc *time.Location) (*transport.HTTP, func(), error) {
	f.calls++
	f.cfg = cfg
	f.cfgLocation = loc.String()

	if f.err != nil {
		return nil, nil, f.err
	}

	ot := mocks.NewOtel()
	state := health.NewState()
	handler := healthHandler.New(health.NewRegistry(time.Second), state, cfg, loc, ot)
	r := router.New(router.DomainHandlers{Health: handler}, middleware.NewAppMiddleware(ot, cfg, nil))

	return transport.New(cfg, r, state), func() { f.cleanups++ }, nil
}

func missingEnvFile(t *testing.T) string {
	t.Helper()

	return filepath.Join(t.TempDir(), "missing.env")
}

func localArgs(t *testing.T, extra ...string) []string {
	return append([]string{
		"--env-file", missingEnvFile(t),
		"--env", "development",
		"--host", "127.0.0.1",
		"--port", "0",
	}, extra...)
}

func TestParseFlags(t *testing.T) {
	flags, err := app.ParseFlags("profitly", "test", []string{"--port", "9090", "--log-level", "debug"}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "9090", flags.Port)
	assert.Equal(t, "debug", flags.LogLevel)
	assert.Equal(t, config.DefaultEnvFile, flags.EnvFile)
	assert.Empty(t, flags.Env)

	cfg := &config.Config{}
	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = "8080"
	flags.Apply(cfg)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
}

func TestParseFlagsRejectsUnknownArguments(t *testing.T) {
	_, err := app.ParseFlags("profitly", "test", []string{"--no-such-flag"}, io.Discard)
	assert.Error(t, err)

	_, err = app.ParseFlags("profitly", "test", []string{"positional"}, io.Discard)
	assert.Error(t, err)
}

func TestStartRejectsUnknownFlag(t *testing.T) {
	root := &fakeRoot{}
	runtime := app.New(root.build, app.WithLogOutput(io.Discard))

	err := runtime.Start(context.Background(), []string{"--no-such-flag"})

	assert.Error(t, err)
	assert.Zero(t, root.calls)
	assert.ErrorIs(t, runtime.Wait(), app.ErrNotStarted)
}

func TestStartRejectsInvalidConfiguration(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-port")

	root := &fakeRoot{}
	runtime := app.New(root.build, app.WithLogOutput(io.Discard))

	err := runtime.Start(context.Background(), []string{"--env-file", missingEnvFile(t)})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid server configuration")
	assert.Zero(t, root.calls)
}

func TestStartRootFailure(t *testing.T) {
	rootErr := errors.New("postgres unreachable")
	root := &fakeRoot{err: rootErr}
	runtime := app.New(root.build, app.WithLogOutput(io.Discard))

	err := runtime.Start(context.Background(), localArgs(t))

	assert.ErrorIs(t, err, rootErr)
	assert.Equal(t, 1, root.calls)
	assert.Empty(t, runtime.Addr())
}

func TestStartListenFailureRunsCleanup(t *testing.T) {
	occupied, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer occupied.Close()

	_, port, err := net.SplitHostPort(occupied.Addr().String())
	require.NoError(t, err)

	root := &fakeRoot{}
	runtime := app.New(root.build, app.WithLogOutput(io.Discard))

	err = runtime.Start(context.Background(), []string{
		"--env-file", missingEnvFile(t),
		"--env", "development",
		"--host", "127.0.0.1",
		"--port", port,
	})

	assert.Error(t, err)
	assert.Equal(t, 1, root.cleanups)
}

func TestStartServeAndShutdown(t *testing.T) {
	root := &fakeRoot{}
	runtime := app.New(root.build, app.WithLogOutput(io.Discard))

	require.NoError(t, runtime.Start(context.Background(), localArgs(t, "--log-level", "error")))
	assert.ErrorIs(t, runtime.Start(context.Background(), nil), app.ErrAlreadyStarted)

	assert.Equal(t, "development", root.cfg.Server.Env)
	assert.Equal(t, "error", root.cfg.Server.LogLevel)
	assert.False(t, runtime.Started().IsZero())
	require.NotEmpty(t, runtime.Addr())

	resp, err := http.Get("http://" + runtime.Addr() + "/actuator/health/liveness")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	done := make(chan error, 1)
	go func() {
		done <- runtime.Wait()
	}()

	runtime.Shutdown()
	runtime.Shutdown()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Wait did not return after Shutdown")
	}

	assert.Equal(t, 1, root.cleanups)

	select {
	case err := <-waitAsync(runtime):
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("second Wait blocked after shutdown")
	}

	assert.Equal(t, 1, root.cleanups)
}

func waitAsync(runtime *app.Runtime) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- runtime.Wait()
	}()

	return done
}

func TestWaitStopsOnContextCancel(t *testing.T) {
	root := &fakeRoot{}
	runtime := app.New(root.build, app.WithLogOutput(io.Discard))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, runtime.Start(ctx, localArgs(t)))

	done := make(chan error, 1)
	go func() {
		done <- runtime.Wait()
	}()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Wait did not return after cancellation")
	}

	assert.Equal(t, 1, root.cleanups)
}

func TestParseFlagsHelpAndVersion(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantText string
	}{
		{name: "help", args: []string{"--help"}, wantText: "--port"},
		{name: "version", args: []string{"--version"}, wantText: "1.2.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer

			flags, err := app.ParseFlags("profitly", "1.2.3", tt.args, &out)

			assert.Nil(t, flags)
			assert.ErrorIs(t, err, app.ErrExitRequested)

			var exit *app.ExitRequest
			require.ErrorAs(t, err, &exit)
			assert.Equal(t, 0, exit.Code)
			assert.Contains(t, out.String(), tt.wantText)
		})
	}
}

func TestStartHelpDoesNotServe(t *testing.T) {
	var out bytes.Buffer

	root := &fakeRoot{}
	runtime := app.New(root.build, app.WithLogOutput(io.Discard), app.WithCLIOutput(&out))

	require.NoError(t, runtime.Start(context.Background(), []string{"--help"}))
	assert.NoError(t, runtime.Wait())

	assert.Zero(t, root.calls)
	assert.Empty(t, runtime.Addr())
	assert.Contains(t, out.String(), "--env-file")
	assert.ErrorIs(t, runtime.Start(context.Background(), nil), app.ErrAlreadyStarted)
}

func TestBootstrapWithRuntime(t *testing.T) {
	local := time.Local
	t.Cleanup(func() {
		time.Local = local
	})

	t.Run("bad flag exits with failure", func(t *testing.T) {
		root := &fakeRoot{}
		runtime := app.New(root.build, app.WithLogOutput(io.Discard), app.WithCLIOutput(io.Discard))

		b := bootstrap.New(runtime)

		assert.Equal(t, bootstrap.ExitFailure, b.Run(context.Background(), []string{"--no-such-flag"}))
		assert.Equal(t, bootstrap.StateStartupFailed, b.State())
		assert.ErrorIs(t, b.Err(), bootstrap.ErrRuntimeStartup)
		assert.Zero(t, root.calls)
	})

	t.Run("served then cancelled exits cleanly", func(t *testing.T) {
		root := &fakeRoot{}
		runtime := app.New(root.build, app.WithLogOutput(io.Discard))

		ctx, cancel := context.WithCancel(context.Background())
		b := bootstrap.New(runtime)

		done := make(chan int, 1)
		go func() {
			done <- b.Run(ctx, localArgs(t))
		}()

		require.Eventually(t, func() bool {
			return b.State() == bootstrap.StateRuntimeRunning
		}, 5*time.Second, 10*time.Millisecond)

		assert.Equal(t, bootstrap.DefaultTimezone, root.cfgLocation)

		cancel()

		select {
		case code := <-done:
			assert.Equal(t, bootstrap.ExitOK, code)
		case <-time.After(5 * time.Second):
			t.Fatal("bootstrap did not return after cancellation")
		}

		assert.Equal(t, bootstrap.StateStopped, b.State())
		assert.Equal(t, 1, root.cleanups)
	})
}
