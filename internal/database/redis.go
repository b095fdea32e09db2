package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/boletim/internal/config"
)

// Connection settings for the artifact store. Artifacts are a few hundred
// kilobytes, so writes get a longer budget than reads.
const (
	clientName   = "boletim"
	dialTimeout  = 5 * time.Second
	readTimeout  = 3 * time.Second
	writeTimeout = 10 * time.Second

	pingAttempts = 3
	pingBackoff  = 500 * time.Millisecond
)

// NewRedisClient opens the Redis connection backing the artifact store and
// waits until it answers PING, retrying a few times while Redis starts up.
func NewRedisClient(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opt.ClientName = clientName
	opt.DialTimeout = dialTimeout
	opt.ReadTimeout = readTimeout
	opt.WriteTimeout = writeTimeout

	rdb := redis.NewClient(opt)
	if err := waitForPing(ctx, rdb, log); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	log.Info().
		Str("addr", opt.Addr).
		Int("db", opt.DB).
		Dur("artifact_ttl", cfg.ArtifactTTL).
		Msg("Artifact store connected")
	return rdb, nil
}

func waitForPing(ctx context.Context, rdb *redis.Client, log zerolog.Logger) error {
	var err error
	for attempt := 1; attempt <= pingAttempts; attempt++ {
		if err = rdb.Ping(ctx).Err(); err == nil {
			return nil
		}
		if attempt == pingAttempts {
			break
		}
		log.Warn().Err(err).Int("attempt", attempt).Msg("Redis not ready, retrying")

		select {
		case <-ctx.Done():
			return fmt.Errorf("ping redis: %w", ctx.Err())
		case <-time.After(time.Duration(attempt) * pingBackoff):
		}
	}
	return fmt.Errorf("ping redis after %d attempts: %w", pingAttempts, err)
}
