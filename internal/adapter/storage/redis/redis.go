package redis

import (
	"context"
	"fmt"

	"wallet-service/config"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Key prefixes of the two features sharing the Redis keyspace.
const (
	ratelimitPrefix   = "ratelimit:"
	idempotencyPrefix = "idempotency:"
)

// NewClient connects the Redis instance shared by the rate limiter and the
// idempotency cache. The client is returned only after a successful ping.
func NewClient(ctx context.Context, cfg config.RedisConfig, log zerolog.Logger) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis at %s: %w", cfg.Addr(), err)
	}

	log.Info().
		Str("addr", cfg.Addr()).
		Int("db", cfg.DB).
		Strs("used_by", []string{ratelimitPrefix, idempotencyPrefix}).
		Msg("redis connected")

	return client, nil
}
