package database

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"admissions_backend/internals/configs"
	"admissions_backend/internals/logger"
)

var Redis *redis.Client

// ConnectRedis dials REDIS_ADDR and pings it. A nil client with an error means
// Redis-backed features (fee OTP) answer 503.
func ConnectRedis(ctx context.Context) (*redis.Client, error) {
	addr := configs.GetEnv("REDIS_ADDR", "localhost:6379")
	logger.Info("connecting to redis", zap.String("addr", addr))

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     configs.GetEnv("REDIS_PASSWORD"),
		DB:           configs.GetEnvInt("REDIS_DB", 0),
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "redis ping")
	}

	Redis = client
	logger.Info("redis connected")
	return client, nil
}
