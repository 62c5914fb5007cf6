package config

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis establishes the Redis connection used for idempotency
// reservations. Returns nil when Redis is disabled; callers treat a nil
// client as "no reservation layer" and rely on the database unique key.
func ConnectRedis(cfg *Config) *redis.Client {
	if !cfg.Redis.Enabled {
		log.Println("⚠️ Redis disabled, idempotency relies on database unique keys only")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("⚠️ Redis unreachable at %s: %v (continuing without reservation layer)", cfg.Redis.Addr, err)
		_ = client.Close()
		return nil
	}

	log.Printf("✅ Redis connected successfully [%s]", cfg.Redis.Addr)
	return client
}
