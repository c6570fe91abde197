// Package cache is a Redis-backed JSON response cache with coarse TTL classes
// and named tags for group invalidation.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/marquee/marquee-go/internal/config"
	"github.com/redis/go-redis/v9"
)

// TTLClass is a coarse cache lifetime.
type TTLClass string

const (
	Minutes TTLClass = "minutes"
	Hours   TTLClass = "hours"
	Days    TTLClass = "days"
)

// Duration returns the lifetime of the class. Unknown classes use Minutes.
func (c TTLClass) Duration() time.Duration {
	switch c {
	case Hours:
		return time.Hour
	case Days:
		return 24 * time.Hour
	default:
		return 5 * time.Minute
	}
}

const tagPrefix = "tag:"

// Cache wraps the Redis client.
type Cache struct {
	client *redis.Client
}

// New connects to Redis and verifies the connection.
func New(cfg config.RedisConfig) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Cache{client: client}, nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Ping checks if Redis is reachable.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Key joins parts into a cache key, e.g. Key("tmdb", "movie", "550").
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}

// Get decodes the cached value for key into dest. found is false on a miss.
func (c *Cache) Get(ctx context.Context, key string, dest any) (found bool, err error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return true, nil
}

// Set stores value as JSON for the lifetime of class and records key under
// every tag.
func (c *Cache) Set(ctx context.Context, key string, value any, class TTLClass, tags ...string) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}

	ttl := class.Duration()
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, data, ttl)
		for _, tag := range tags {
			pipe.SAdd(ctx, tagPrefix+tag, key)
			// A tag set outlives its members; stale members are harmless on DEL.
			pipe.Expire(ctx, tagPrefix+tag, Days.Duration())
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// Delete removes keys.
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// InvalidateTag removes every key recorded under tag and returns how many
// were deleted.
func (c *Cache) InvalidateTag(ctx context.Context, tag string) (int64, error) {
	setKey := tagPrefix + tag
	keys, err := c.client.SMembers(ctx, setKey).Result()
	if err != nil {
		return 0, fmt.Errorf("cache tag %s: %w", tag, err)
	}
	if len(keys) == 0 {
		return 0, nil
	}

	var deleted *redis.IntCmd
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		deleted = pipe.Del(ctx, keys...)
		pipe.Del(ctx, setKey)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("cache invalidate %s: %w", tag, err)
	}
	return deleted.Val(), nil
}
