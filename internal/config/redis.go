package config

// Redis backs the rate limiter on the auth endpoints and the response
// cache on the public user listing. Connection failure at startup is not
// fatal: callers receive nil and both middlewares degrade to pass-through.

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient builds a Redis client from REDIS_HOST/REDIS_PORT (or
// REDIS_ADDR), REDIS_PASSWORD and REDIS_DB. Returns nil when the server
// cannot be reached.
func NewRedisClient() *redis.Client {
	addr := getenv("REDIS_ADDR", "")
	if host, port := getenv("REDIS_HOST", ""), getenv("REDIS_PORT", ""); host != "" && port != "" {
		addr = host + ":" + port
	}
	if addr == "" {
		addr = "localhost:6379"
	}
	dbNum := 0
	if s := getenv("REDIS_DB", ""); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			dbNum = n
		}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: getenv("REDIS_PASSWORD", ""),
		DB:       dbNum,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil
	}
	return client
}
