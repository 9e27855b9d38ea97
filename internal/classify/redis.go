package classify

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces category keys in a shared Redis.
const DefaultRedisPrefix = "voce:category:"

// RedisOptions configures a RedisCache.
type RedisOptions struct {
	// Redis server address.
	Address string
	// Password required when connecting to the Redis server.
	Password string
	// DB to connect to.
	DB int
	// Key prefix, DefaultRedisPrefix if empty.
	Prefix string
	// TTL of each entry; zero keeps entries until evicted.
	TTL time.Duration
}

// RedisCache is a Cache shared by every host process on a machine (or a
// classroom), so the external predictor runs once per URL.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache connects lazily; the first Get or Set dials.
func NewRedisCache(opts RedisOptions) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Address,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return newRedisCache(client, opts)
}

func newRedisCache(client *redis.Client, opts RedisOptions) *RedisCache {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisCache{client: client, prefix: prefix, ttl: opts.TTL}
}

// Key returns the Redis key for a cache key.
func (r *RedisCache) Key(key string) string {
	return r.prefix + key
}

// Get implements Cache.
func (r *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	category, err := r.client.Get(ctx, r.Key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return category, true, nil
}

// Set implements Cache.
func (r *RedisCache) Set(ctx context.Context, key, category string) error {
	return r.client.Set(ctx, r.Key(key), category, r.ttl).Err()
}

// Ping checks connectivity.
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the connection pool.
func (r *RedisCache) Close() error {
	return r.client.Close()
}
