package database

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"todo-go/configs"
	"todo-go/pkg/logger"
)

// RedisAddr adalah host:port Redis dari config.
func RedisAddr(cfg configs.Config) string {
	return fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort)
}

func ConnectRedis(ctx context.Context, cfg configs.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     RedisAddr(cfg),
		Password: "",
		DB:       0,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		logger.ErrorLogger.Error("Redis connection error", zap.String("addr", RedisAddr(cfg)), zap.Error(err))
		client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return client, nil
}
