package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	defaultTimeout = 5 * time.Second
	clientName     = "lcstudio-api"
)

// Config captures the settings for the optional Redis connection.
type Config struct {
	Addr     string
	Password string
	DB       int
	Timeout  time.Duration
}

// Connect opens a client and pings it once. Timeout bounds the ping and every
// later dial, read and write, so a slow Redis cannot stall a login.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ClientName:   clientName,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// Open returns a connected client, or nil when Redis is not configured or
// not reachable. Redis only backs login throttling, so the server runs
// without it.
func Open(ctx context.Context, cfg Config, log zerolog.Logger) *redis.Client {
	if cfg.Addr == "" {
		log.Info().Msg("redis not configured, login throttling disabled")
		return nil
	}
	client, err := Connect(ctx, cfg)
	if err != nil {
		log.Warn().Err(err).Str("addr", cfg.Addr).Msg("redis unavailable, login throttling disabled")
		return nil
	}
	return client
}
