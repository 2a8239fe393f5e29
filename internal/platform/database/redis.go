package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/SlpAus/quiz-share-backend/internal/platform/config"
)

// OpenRedis 连接Redis，并通过PING验证连接。
func OpenRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("无法连接到Redis %s: %w", cfg.Address, err)
	}

	slog.Info("Redis连接成功", "addr", cfg.Address)
	return client, nil
}
