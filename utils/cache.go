// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"fundihub/config"

	"github.com/go-redis/redis/v8"
)

var (
	// CacheClient is the generic cache client (active pricing config, etc).
	CacheClient *redis.Client
	// MatchCacheClient is the dedicated client for match-session caching.
	MatchCacheClient *redis.Client
)

// InitCache initializes the generic Redis cache client.
func InitCache() {
	CacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisCacheDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := CacheClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Cache): %v", err)
	}
}

// GetCacheClient returns the generic cache client.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		InitCache()
	}
	return CacheClient
}

// InitMatchCache initializes the Redis client for match-session caching.
func InitMatchCache() {
	MatchCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisMatchDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := MatchCacheClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Match Cache): %v", err)
	}
}

// GetMatchCacheClient returns the Redis client for match-session caching.
func GetMatchCacheClient() *redis.Client {
	if MatchCacheClient == nil {
		InitMatchCache()
	}
	return MatchCacheClient
}
