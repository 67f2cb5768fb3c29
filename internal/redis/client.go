package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "nexus:cache:"

// Client is the shared cache tier. It satisfies cache.Store.
type Client struct {
	rdb *redis.Client
}

type cachedValue struct {
	StoredAt time.Time       `json:"stored_at"`
	Value    json.RawMessage `json:"value"`
}

func Initialize(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

func (c *Client) Save(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	jsonData, err := json.Marshal(cachedValue{StoredAt: time.Now(), Value: raw})
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	return c.rdb.Set(ctx, keyPrefix+key, jsonData, ttl).Err()
}

// Load decodes the cached value into dest. A missing key is not an error.
func (c *Client) Load(ctx context.Context, key string, dest any) (time.Time, bool, error) {
	val, err := c.rdb.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("failed to get cache entry: %w", err)
	}

	var entry cachedValue
	if err := json.Unmarshal(val, &entry); err != nil {
		return time.Time{}, false, fmt.Errorf("failed to unmarshal cache entry: %w", err)
	}
	if err := json.Unmarshal(entry.Value, dest); err != nil {
		return time.Time{}, false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}

	return entry.StoredAt, true, nil
}

func (c *Client) Delete(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, keyPrefix+key).Err()
}

// Close Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
