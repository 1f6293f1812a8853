package helper

//nolint:revive
import (
	"errors"
	"fmt"
	"net"
	"net/url"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog/log"

	"profitly/config"
)

const (
	ActionUp     = "up"
	ActionDown   = "down"
	ActionStepUp = "step-up"
	ActionDrop   = "drop"
)

var ErrUnknownAction = errors.New("unknown migration action")

type migration struct {
	run     func(mig *migrate.Migrate) error
	failure string
	success string
}

var actions = map[string]migration{
	ActionUp: {
		run:     func(mig *migrate.Migrate) error { return mig.Up() },
		failure: "error running migrations",
		success: "Database migrations completed successfully",
	},
	ActionDown: {
		run:     func(mig *migrate.Migrate) error { return mig.Steps(-1) },
		failure: "error rolling back migrations",
		success: "Database migrations rolled back successfully",
	},
	ActionStepUp: {
		run:     func(mig *migrate.Migrate) error { return mig.Steps(1) },
		failure: "error running migrations",
		success: "Database migrations completed successfully",
	},
	ActionDrop: {
		run:     func(mig *migrate.Migrate) error { return mig.Down() },
		failure: "error rolling back migrations",
		success: "Database migrations rolled back successfully",
	},
}

func getDBName(config *config.Config, baseName string) string {
	if config.DB.Postgres.Prefix != "" {
		return config.DB.Postgres.Prefix + baseName
	}

	return baseName
}

// ConnectionString builds the golang-migrate database URL for the write side.
func ConnectionString(config *config.Config) string {
	write := config.DB.Postgres.Write

	query := url.Values{}
	query.Set("sslmode", write.SSLMode)

	if config.DB.Postgres.MigrationTable != "" {
		query.Set("x-migrations-table", config.DB.Postgres.MigrationTable)
	}

	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(write.Username, write.Password),
		Host:     net.JoinHostPort(write.Host, write.Port),
		Path:     "/" + getDBName(config, write.Name),
		RawQuery: query.Encode(),
	}

	return dsn.String()
}

func getConnection(config *config.Config) (*migrate.Migrate, error) {
	mig, err := migrate.New(config.DB.Postgres.MigrationPath, ConnectionString(config))
	if err != nil {
		return nil, fmt.Errorf("error creating migrate instance: %w", err)
	}

	return mig, nil
}

func Runner(config *config.Config, action string) error {
	step, ok := actions[action]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownAction, action)
	}

	mig, err := getConnection(config)
	if err != nil {
		return err
	}

	defer mig.Close()

	if err := step.run(mig); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%s: %w", step.failure, err)
	}

	log.Info().Str("action", action).Msg(step.success)

	return nil
}

func Up(config *config.Config) error {
	return Runner(config, ActionUp)
}

func StepUp(config *config.Config) error {
	return Runner(config, ActionStepUp)
}

func Down(config *config.Config) error {
	return Runner(config, ActionDown)
}

func Drop(config *config.Config) error {
	return Runner(config, ActionDrop)
}
