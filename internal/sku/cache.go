package sku

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const cacheVersionKey = "skus:version"

// Cache is a versioned Redis read cache. Bumping the version orphans every
// key built before it. A nil Cache or nil client calls loaders directly.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
}

// NewCache instantiates the cache helper.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) enabled() bool {
	return c != nil && c.client != nil
}

// Version returns the current cache version, initialising when missing.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if !c.enabled() {
		return 0, nil
	}
	if err := c.client.SetNX(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
		return 0, err
	}
	return c.client.Get(ctx, cacheVersionKey).Int64()
}

// BuildKey composes the cache key with the current version. Parts are
// query-escaped so a separator inside a value cannot shift field boundaries.
func (c *Cache) BuildKey(ctx context.Context, parts ...string) (string, error) {
	escaped := make([]string, 0, len(parts)+1)
	escaped = append(escaped, "skus")
	for _, p := range parts {
		escaped = append(escaped, url.QueryEscape(p))
	}
	joined := strings.Join(escaped, ":")
	if !c.enabled() {
		return joined, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:v%d", joined, ver), nil
}

// FetchJSON loads a cached value into dest or populates it with loader.
// Concurrent misses on the same key share one loader call.
func (c *Cache) FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error {
	if loader == nil {
		return errors.New("sku cache: loader required")
	}
	if !c.enabled() {
		value, err := loader(ctx)
		if err != nil {
			return err
		}
		return roundTrip(value, dest)
	}

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		return json.Unmarshal(payload, dest)
	}
	if !errors.Is(err, redis.Nil) {
		return err
	}

	ch := c.group.DoChan(key, func() (any, error) {
		value, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		_ = c.client.Set(ctx, key, raw, c.ttl).Err()
		return raw, nil
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return res.Err
		}
		return json.Unmarshal(res.Val.([]byte), dest)
	}
}

// Bump invalidates every cached entry by incrementing the version.
func (c *Cache) Bump(ctx context.Context) error {
	if !c.enabled() {
		return nil
	}
	return c.client.Incr(ctx, cacheVersionKey).Err()
}

func roundTrip(value, dest any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}
