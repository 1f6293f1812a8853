package config

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"

	"profitly/shared/validator"
)

const DefaultEnvFile = ".env"

type Config struct {
	Server struct {
		Env      string `envconfig:"ENV" default:"production" validate:"oneof=development staging production"`
		LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
		Port     string `envconfig:"PORT" default:"8080" validate:"required,port"`
		Host     string `envconfig:"HOST" default:"0.0.0.0"`
		Shutdown struct {
			CleanupPeriodSeconds int64 `envconfig:"CLEANUP_PERIOD_SECONDS" default:"5" validate:"gte=0"`
			GracePeriodSeconds   int64 `envconfig:"GRACE_PERIOD_SECONDS" default:"10" validate:"gte=0"`
		} `envconfig:"SHUTDOWN"`
	} `envconfig:"SERVER"`

	App struct {
		Name    string `envconfig:"NAME" default:"profitly" validate:"required"`
		Version string `envconfig:"VERSION" default:"dev"`
		CORS    struct {
			AllowCredentials bool     `envconfig:"ALLOW_CREDENTIALS"`
			AllowedHeaders   []string `envconfig:"ALLOWED_HEADERS"`
			AllowedMethods   []string `envconfig:"ALLOWED_METHODS"`
			AllowedOrigins   []string `envconfig:"ALLOWED_ORIGINS"`
			Enable           bool     `envconfig:"ENABLE"`
			MaxAgeSeconds    int      `envconfig:"MAX_AGE_SECONDS" validate:"gte=0"`
		} `envconfig:"CORS"`
		RateLimiter struct {
			Enable        bool `envconfig:"ENABLE"`
			MaxRequests   int  `envconfig:"MAX_REQUESTS" default:"100" validate:"gte=1"`
			WindowSeconds int  `envconfig:"WINDOW_SECONDS" default:"60" validate:"gte=1"`
		} `envconfig:"RATE_LIMITER"`
	} `envconfig:"APP"`

	Cache struct {
		Redis struct {
			Primary struct {
				Enable   bool   `envconfig:"ENABLE"`
				Host     string `envconfig:"HOST" validate:"required"`
				Port     string `envconfig:"PORT" default:"6379" validate:"required,port"`
				Password string `envconfig:"PASSWORD"`
				DB       int    `envconfig:"DB" validate:"gte=0"`
			} `envconfig:"PRIMARY"`
		} `envconfig:"REDIS"`
		TTL int `envconfig:"TTL" default:"3600"`
	} `envconfig:"CACHE"`

	DB struct {
		Postgres struct {
			Enable         bool   `envconfig:"ENABLE"`
			MaxRetry       int    `envconfig:"MAX_RETRY" default:"3" validate:"gte=1"`
			RetryWaitTime  int    `envconfig:"RETRY_WAIT_TIME" default:"2" validate:"gte=0"`
			MigrationTable string `envconfig:"MIGRATION_TABLE" default:"schema_migrations"`
			MigrationPath  string `envconfig:"MIGRATION_PATH" default:"file://migrations/postgres"`
			AutoMigrate    bool   `envconfig:"AUTO_MIGRATE"`
			Prefix         string `envconfig:"PREFIX"`
			Read           struct {
				Host     string `envconfig:"HOST" validate:"required"`
				Port     string `envconfig:"PORT" default:"5432" validate:"required,port"`
				Username string `envconfig:"USER" validate:"required"`
				Password string `envconfig:"PASSWORD"`
				Name     string `envconfig:"NAME" validate:"required"`
				SSLMode  string `envconfig:"SSL_MODE" default:"disable"`
			} `envconfig:"READ"`
			Write struct {
				Host     string `envconfig:"HOST" validate:"required"`
				Port     string `envconfig:"PORT" default:"5432" validate:"required,port"`
				Username string `envconfig:"USER" validate:"required"`
				Password string `envconfig:"PASSWORD"`
				Name     string `envconfig:"NAME" validate:"required"`
				SSLMode  string `envconfig:"SSL_MODE" default:"disable"`
			} `envconfig:"WRITE"`
		} `envconfig:"POSTGRES"`
	} `envconfig:"DB"`

	External struct {
		Otel struct {
			Endpoint string `envconfig:"ENDPOINT"`
		} `envconfig:"OTEL"`
	} `envconfig:"EXTERNAL"`
}

// IsDevelopment reports whether the service runs with development shortcuts.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// Validate checks the sections that are always used and the sections of
// enabled components. Disabled components are not validated.
func (c *Config) Validate() error {
	if err := validator.ValidateStruct(&c.Server); err != nil {
		return fmt.Errorf("invalid server configuration: %w", err)
	}

	if err := validator.ValidateStruct(&c.App); err != nil {
		return fmt.Errorf("invalid app configuration: %w", err)
	}

	if c.Cache.Redis.Primary.Enable {
		if err := validator.ValidateStruct(&c.Cache.Redis.Primary); err != nil {
			return fmt.Errorf("invalid redis configuration: %w", err)
		}
	}

	if c.DB.Postgres.Enable {
		if err := validator.ValidateStruct(&c.DB.Postgres); err != nil {
			return fmt.Errorf("invalid postgres configuration: %w", err)
		}
	}

	return nil
}

// Load reads envFile (when present) into the environment and processes the
// environment into a fresh Config.
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = DefaultEnvFile
	}

	err := godotenv.Load(envFile)

	switch {
	case err == nil:
		log.Info().Str("file", envFile).Msg("Successfully loaded variables from env file into environment")
	case errors.Is(err, fs.ErrNotExist):
		log.Warn().Str("file", envFile).Msg("Could not load env file, continuing with existing environment variables")
	default:
		return nil, fmt.Errorf("loading env file %s: %w", envFile, err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("processing environment variables: %w", err)
	}

	return &cfg, nil
}

var (
	conf    *Config
	once    sync.Once
	initErr error
)

// Init loads the process-wide configuration once. Later calls return the
// outcome of the first one.
func Init() error {
	once.Do(func() {
		conf, initErr = Load(DefaultEnvFile)
		if initErr != nil {
			initErr = fmt.Errorf("initializing configuration: %w", initErr)

			return
		}

		log.Info().Msg("Service configuration initialized successfully")
	})

	return initErr
}

// Get returns the process-wide configuration, loading it on first use.
// Tools such as cmd/migrate use it; the application runtime loads its own.
func Get() *Config {
	if err := Init(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize configuration")
	}

	return conf
}
