package helper_test

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profitly/config"
	"profitly/helper"
)

func TestRunnerRejectsUnknownAction(t *testing.T) {
	err := helper.Runner(&config.Config{}, "sideways")

	assert.True(t, errors.Is(err, helper.ErrUnknownAction))
}

func TestConnectionString(t *testing.T) {
	cfg := &config.Config{}
	cfg.DB.Postgres.Prefix = "dev_"
	cfg.DB.Postgres.MigrationTable = "schema_migrations"
	cfg.DB.Postgres.Write.Username = "app"
	cfg.DB.Postgres.Write.Password = "secret"
	cfg.DB.Postgres.Write.Host = "localhost"
	cfg.DB.Postgres.Write.Port = "5432"
	cfg.DB.Postgres.Write.Name = "profitly"
	cfg.DB.Postgres.Write.SSLMode = "disable"

	parsed, err := url.Parse(helper.ConnectionString(cfg))
	require.NoError(t, err)

	assert.Equal(t, "localhost:5432", parsed.Host)
	assert.Equal(t, "/dev_profitly", parsed.Path)
	assert.Equal(t, "schema_migrations", parsed.Query().Get("x-migrations-table"))
	assert.Equal(t, "disable", parsed.Query().Get("sslmode"))
}

func TestRunnerFailsWithoutMigrationSource(t *testing.T) {
	cfg := &config.Config{}
	cfg.DB.Postgres.MigrationPath = "file:///definitely/not/here"
	cfg.DB.Postgres.Write.Host = "127.0.0.1"
	cfg.DB.Postgres.Write.Port = "1"
	cfg.DB.Postgres.Write.Name = "profitly"
	cfg.DB.Postgres.Write.SSLMode = "disable"

	assert.Error(t, helper.Up(cfg))
}
