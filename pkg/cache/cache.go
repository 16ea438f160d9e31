// Package cache provides a best-effort key-value accessor on top of Redis.
// Every operation degrades to a cache miss (or a no-op) when the store is
// unreachable: callers must never treat the cache as a source of truth.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Well-known key prefixes.
const (
	PrefixUser    = "user:"
	PrefixSession = "session:"
	PrefixConfig  = "config:"
)

type Cache struct {
	rdb    *redis.Client
	logger *logrus.Logger
}

func New(rdb *redis.Client, logger *logrus.Logger) *Cache {
	return &Cache{rdb: rdb, logger: logger}
}

func (c *Cache) warn(op, key string, err error) {
	if c.logger != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{"op": op, "key": key}).Warn("cache degraded")
	}
}

// Get returns the raw value for key. found is false on miss or store failure.
func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	if c == nil || c.rdb == nil {
		return "", false
	}
	v, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false
	}
	if err != nil {
		c.warn("get", key, err)
		return "", false
	}
	return v, true
}

// GetJSON unmarshals the cached value into dest. found is false on miss,
// store failure or a corrupt payload.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) bool {
	v, ok := c.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(v), dest); err != nil {
		c.warn("get_json", key, err)
		return false
	}
	return true
}

// Set stores value under key with an optional TTL (ttl <= 0 means no expiry).
func (c *Cache) Set(ctx context.Context, key string, value string, ttl time.Duration) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		c.warn("set", key, err)
	}
}

// SetJSON marshals value and stores it under key.
func (c *Cache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) {
	b, err := json.Marshal(value)
	if err != nil {
		c.warn("set_json", key, err)
		return
	}
	c.Set(ctx, key, string(b), ttl)
}

// Delete removes key.
func (c *Cache) Delete(ctx context.Context, key string) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		c.warn("delete", key, err)
	}
}

// Exists reports whether key is present. False on store failure.
func (c *Cache) Exists(ctx context.Context, key string) bool {
	if c == nil || c.rdb == nil {
		return false
	}
	n, err := c.rdb.Exists(ctx, key).Result()
	if err != nil {
		c.warn("exists", key, err)
		return false
	}
	return n > 0
}

// TTL returns the remaining lifetime of key, or 0 when unknown.
func (c *Cache) TTL(ctx context.Context, key string) time.Duration {
	if c == nil || c.rdb == nil {
		return 0
	}
	d, err := c.rdb.TTL(ctx, key).Result()
	if err != nil || d < 0 {
		if err != nil {
			c.warn("ttl", key, err)
		}
		return 0
	}
	return d
}

// Increment atomically increments the integer at key, setting the expiry on
// first increment. Returns 0 on store failure.
func (c *Cache) Increment(ctx context.Context, key string, ttl time.Duration) int64 {
	if c == nil || c.rdb == nil {
		return 0
	}
	pipe := c.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	if ttl > 0 {
		pipe.ExpireNX(ctx, key, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		c.warn("increment", key, err)
		return 0
	}
	return incr.Val()
}
