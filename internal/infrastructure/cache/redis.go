package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sangkips/restopos-api/internal/config"
	"github.com/sirupsen/logrus"
)

// NewRedisClient connects to Redis and verifies the connection with PING.
// A few attempts are made with a doubling backoff before giving up.
func NewRedisClient(ctx context.Context, cfg *config.RedisConfig, log *logrus.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: 20,
	})

	var err error
	backoff := time.Second
	for attempt := 1; attempt <= 5; attempt++ {
		if err = rdb.Ping(ctx).Err(); err == nil {
			log.WithFields(logrus.Fields{"addr": cfg.Addr, "attempt": attempt}).Info("Connected to Redis")
			return rdb, nil
		}
		log.WithFields(logrus.Fields{"addr": cfg.Addr, "attempt": attempt}).WithError(err).Warn("Failed to connect to Redis, retrying")

		select {
		case <-ctx.Done():
			_ = rdb.Close()
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	_ = rdb.Close()
	return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
}
