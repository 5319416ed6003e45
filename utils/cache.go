// File: utils/cache.go
package utils

import (
	"context"
	"time"

	"caresaviour/config"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

var (
	// CacheClient is the generic client, also used for realtime pub/sub.
	CacheClient *redis.Client
	// AuthCacheClient is the dedicated client for authorization caching.
	AuthCacheClient *redis.Client
)

func newRedisClient(db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         config.AppConfig.RedisAddr,
		Password:     config.AppConfig.RedisPassword,
		DB:           db,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
	})
}

// InitRedis connects the cache and auth clients. A client that cannot be
// reached is left nil and callers degrade to their non-cached path.
func InitRedis() {
	CacheClient = pingOrNil(newRedisClient(config.AppConfig.RedisCacheDB), "cache")
	AuthCacheClient = pingOrNil(newRedisClient(config.AppConfig.RedisAuthDB), "auth")
}

func pingOrNil(client *redis.Client, name string) *redis.Client {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		GetLogger().Warn("Redis unavailable, continuing without it", zap.String("client", name), zap.Error(err))
		_ = client.Close()
		return nil
	}
	GetLogger().Info("Connected to Redis", zap.String("client", name))
	return client
}

// GetCacheClient returns the generic cache client.
func GetCacheClient() *redis.Client {
	return CacheClient
}

// GetAuthCacheClient returns the Redis client for authorization caching.
func GetAuthCacheClient() *redis.Client {
	return AuthCacheClient
}

// CloseRedis closes every open client.
func CloseRedis() {
	for _, c := range []*redis.Client{CacheClient, AuthCacheClient} {
		if c != nil {
			_ = c.Close()
		}
	}
}
