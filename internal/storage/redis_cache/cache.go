package redis_cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Cache is a JSON read-through cache keyed under a fixed namespace.
type Cache struct {
	rdb       *goredis.Client
	namespace string
	ttl       time.Duration
}

func NewClient(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func New(rdb *goredis.Client, namespace string, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, namespace: namespace, ttl: ttl}
}

func (c *Cache) key(k string) string {
	return c.namespace + ":" + k
}

// Get decodes the cached value into dst. A miss returns false with no error.
func (c *Cache) Get(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := c.rdb.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		// stale shape after a deploy; treat as a miss
		_ = c.rdb.Del(ctx, c.key(key)).Err()
		return false, nil
	}
	return true, nil
}

func (c *Cache) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.key(key), raw, c.ttl).Err()
}

// InvalidatePrefix removes every key in the namespace starting with prefix.
func (c *Cache) InvalidatePrefix(ctx context.Context, prefix string) error {
	iter := c.rdb.Scan(ctx, 0, c.key(prefix)+"*", 100).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			if err := c.rdb.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return c.rdb.Del(ctx, batch...).Err()
	}
	return nil
}

// Nop never stores anything. Used when redis is disabled.
type Nop struct{}

func (Nop) Get(context.Context, string, any) (bool, error) { return false, nil }
func (Nop) Set(context.Context, string, any) error { return nil }
func (Nop) InvalidatePrefix(context.Context, string) error { return nil }
