package postgres

//nolint:revive
import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"profitly/config"
	"profitly/helper"
)

const (
	postgresMaxIdleConnection = 10
	postgresMaxOpenConnection = 10

	indicatorName = "postgres"
)

var ErrNotConnected = errors.New("database not connected")

type Connection struct {
	Read  *sqlx.DB
	Write *sqlx.DB
}

// Endpoint is one side (read or write) of the configured datasource.
type Endpoint struct {
	Name     string
	Username string
	Password string
	Host     string
	Port     string
	DBName   string
	SSLMode  string
	Timezone string
}

// DSN renders the endpoint as a lib/pq URL. The session timezone is passed
// as a startup parameter so database-side time functions agree with the
// process default.
func (e Endpoint) DSN() string {
	query := url.Values{}
	query.Set("sslmode", e.SSLMode)

	if e.Timezone != "" {
		query.Set("timezone", e.Timezone)
	}

	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(e.Username, e.Password),
		Host:     net.JoinHostPort(e.Host, e.Port),
		Path:     "/" + e.DBName,
		RawQuery: query.Encode(),
	}

	return dsn.String()
}

// New opens the read and write pools when postgres is enabled and applies
// pending migrations when auto-migrate is on. A disabled datasource yields a
// nil connection.
func New(config *config.Config, loc *time.Location) (*Connection, func(), error) {
	if !config.DB.Postgres.Enable {
		log.Info().Msg("Postgres disabled, skipping connection")

		return nil, func() {}, nil
	}

	zone := ""
	if loc != nil {
		zone = loc.String()
	}

	write, err := CreatePostgresConnection(WriteEndpoint(config, zone), config.DB.Postgres.MaxRetry, config.DB.Postgres.RetryWaitTime)
	if err != nil {
		return nil, nil, err
	}

	read, err := CreatePostgresConnection(ReadEndpoint(config, zone), config.DB.Postgres.MaxRetry, config.DB.Postgres.RetryWaitTime)
	if err != nil {
		_ = write.Close()

		return nil, nil, err
	}

	conn := &Connection{Read: read, Write: write}

	if config.DB.Postgres.AutoMigrate {
		if err := helper.Up(config); err != nil {
			conn.Close()

			return nil, nil, fmt.Errorf("auto migration: %w", err)
		}
	}

	return conn, conn.Close, nil
}

// Close releases both pools.
func (c *Connection) Close() {
	for name, db := range map[string]*sqlx.DB{"read": c.Read, "write": c.Write} {
		if db == nil {
			continue
		}

		if err := db.Close(); err != nil {
			log.Error().Err(err).Str("name", name).Msg("Failed to close database connection")
		}
	}
}

func (c *Connection) Name() string {
	return indicatorName
}

// Check pings both pools.
func (c *Connection) Check(ctx context.Context) error {
	if c.Write == nil || c.Read == nil {
		return ErrNotConnected
	}

	if err := c.Write.PingContext(ctx); err != nil {
		return fmt.Errorf("write database ping: %w", err)
	}

	if err := c.Read.PingContext(ctx); err != nil {
		return fmt.Errorf("read database ping: %w", err)
	}

	return nil
}

// getDBName returns the database name with prefix if configured
func getDBName(config *config.Config, baseName string) string {
	if config.DB.Postgres.Prefix != "" {
		return config.DB.Postgres.Prefix + baseName
	}

	return baseName
}

// WriteEndpoint describes the write side of the datasource.
func WriteEndpoint(config *config.Config, zone string) Endpoint {
	write := config.DB.Postgres.Write

	return Endpoint{
		Name:     "write",
		Username: write.Username,
		Password: write.Password,
		Host:     write.Host,
		Port:     write.Port,
		DBName:   getDBName(config, write.Name),
		SSLMode:  write.SSLMode,
		Timezone: zone,
	}
}

// ReadEndpoint describes the read side of the datasource.
func ReadEndpoint(config *config.Config, zone string) Endpoint {
	read := config.DB.Postgres.Read

	return Endpoint{
		Name:     "read",
		Username: read.Username,
		Password: read.Password,
		Host:     read.Host,
		Port:     read.Port,
		DBName:   getDBName(config, read.Name),
		SSLMode:  read.SSLMode,
		Timezone: zone,
	}
}

// CreatePostgresConnection creates a database connection, retrying up to
// maxRetry times with waitTime seconds between attempts.
func CreatePostgresConnection(endpoint Endpoint, maxRetry, waitTime int) (*sqlx.DB, error) {
	var lastErr error

	for retry := range max(maxRetry, 1) {
		sqlDB, err := sqlx.Connect("postgres", endpoint.DSN())
		if err == nil {
			log.
				Info().
				Str("name", endpoint.Name).
				Str("host", endpoint.Host).
				Str("port", endpoint.Port).
				Str("dbName", endpoint.DBName).
				Msg("Connected to database")
			sqlDB.SetMaxIdleConns(postgresMaxIdleConnection)
			sqlDB.SetMaxOpenConns(postgresMaxOpenConnection)

			return sqlDB, nil
		}

		lastErr = err

		log.
			Error().
			Err(err).
			Str("name", endpoint.Name).
			Str("host", endpoint.Host).
			Str("port", endpoint.Port).
			Str("dbName", endpoint.DBName).
			Int("attempt", retry+1).
			Msg("Failed connecting to database, retrying")

		if retry+1 < maxRetry {
			time.Sleep(time.Duration(waitTime) * time.Second)
		}
	}

	return nil, fmt.Errorf("connecting to %s database %s: %w", endpoint.Name, endpoint.DBName, lastErr)
}
