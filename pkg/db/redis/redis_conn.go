package redis

import (
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/config"
)

// NewRedisClient builds the client used by the status mirror.
func NewRedisClient(cfg *config.Config) *redis.Client {
	redisHost := cfg.Redis.RedisAddr
	if redisHost == "" {
		redisHost = ":6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:         redisHost,
		MinIdleConns: cfg.Redis.MinIdleConns,
		PoolSize:     cfg.Redis.PoolSize,
		PoolTimeout:  time.Duration(cfg.Redis.PoolTimeout) * time.Second,
		Password:     cfg.Redis.RedisPassword,
		DB:           cfg.Redis.DB,
	})

	return client
}
