package redis

import (
	"context"
	"fmt"
	"net"

	goRedis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"profitly/config"
)

const indicatorName = "redis"

// New connects to the primary redis when it is enabled. A disabled redis
// yields a nil client and a no-op cleanup.
func New(config *config.Config) (*goRedis.Client, func(), error) {
	primary := config.Cache.Redis.Primary
	if !primary.Enable {
		log.Info().Msg("Redis disabled, skipping connection")

		return nil, func() {}, nil
	}

	ctx := context.Background()
	client := goRedis.NewClient(&goRedis.Options{
		Addr:     net.JoinHostPort(primary.Host, primary.Port),
		Password: primary.Password,
		DB:       primary.DB,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()

		return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", client.Options().Addr, err)
	}

	log.Info().
		Int("db", primary.DB).
		Str("host", primary.Host).
		Str("port", primary.Port).
		Msg("Connected to Redis")

	cleanup := func() {
		if err := client.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close Redis client")
		}
	}

	return client, cleanup, nil
}

// Indicator reports redis reachability to the health registry.
type Indicator struct {
	client *goRedis.Client
}

func NewIndicator(client *goRedis.Client) *Indicator {
	return &Indicator{client: client}
}

func (i *Indicator) Name() string {
	return indicatorName
}

func (i *Indicator) Check(ctx context.Context) error {
	if err := i.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}

	return nil
}
