package app

import (
	"errors"
	"fmt"
	"io"

	"github.com/alecthomas/kong"

	"profitly/config"
)

// Flags are the command-line overrides accepted by the runtime. Anything
// left empty keeps the value from the environment.
type Flags struct {
	EnvFile  string           `kong:"name='env-file',default='${envFile}',help='Path to the env file loaded into the environment.'"`
	Env      string           `kong:"name='env',help='Server environment (development, staging, production).'"`
	Host     string           `kong:"name='host',help='Address the HTTP server binds to.'"`
	Port     string           `kong:"name='port',help='Port the HTTP server listens on.'"`
	LogLevel string           `kong:"name='log-level',help='Log level (trace, debug, info, warn, error).'"`
	Version  kong.VersionFlag `kong:"help='Output version and exit.'"`
}

// ErrExitRequested matches an ExitRequest with errors.Is.
var ErrExitRequested = errors.New("exit requested")

// ExitRequest is returned by ParseFlags when a flag such as --help or
// --version has already written its output and the process should end
// with Code instead of serving.
type ExitRequest struct {
	Code int
}

func (e *ExitRequest) Error() string {
	return fmt.Sprintf("exit requested with status %d", e.Code)
}

func (e *ExitRequest) Is(target error) bool {
	return target == ErrExitRequested
}

// ParseFlags parses args into Flags. Unknown flags and positional arguments
// are errors. Usage and version output go to out.
func ParseFlags(name, version string, args []string, out io.Writer) (*Flags, error) {
	flags := &Flags{}

	var exit *ExitRequest

	parser, err := kong.New(flags,
		kong.Name(name),
		kong.Writers(out, out),
		kong.Exit(func(code int) {
			if exit == nil {
				exit = &ExitRequest{Code: code}
			}
		}),
		kong.Description("Profitly application server."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"envFile": config.DefaultEnvFile,
			"version": version,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed creating the Kong parser: %w", err)
	}

	_, err = parser.Parse(args)

	if exit != nil {
		return nil, exit
	}

	if err != nil {
		return nil, fmt.Errorf("failed parsing CLI arguments: %w", err)
	}

	return flags, nil
}

// Apply copies the non-empty overrides onto cfg.
func (f *Flags) Apply(cfg *config.Config) {
	if f.Env != "" {
		cfg.Server.Env = f.Env
	}

	if f.Host != "" {
		cfg.Server.Host = f.Host
	}

	if f.Port != "" {
		cfg.Server.Port = f.Port
	}

	if f.LogLevel != "" {
		cfg.Server.LogLevel = f.LogLevel
	}
}
