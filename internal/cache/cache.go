// Package cache keeps short-lived copies of catalog and ledger reads.
//
// A Cache holds a single value under a fixed key. Readers call GetOrLoad and
// every mutation that affects the value must call Invalidate.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// Backend stores raw cached payloads.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Cache is a typed view over a Backend entry. A nil *Cache always loads.
type Cache[T any] struct {
	backend Backend
	key     string
	ttl     time.Duration
}

func New[T any](backend Backend, key string, ttl time.Duration) *Cache[T] {
	return &Cache[T]{backend: backend, key: key, ttl: ttl}
}

// GetOrLoad returns the cached value, or calls load and caches its result.
// Backend failures fall through to load; they never fail the read.
func (c *Cache[T]) GetOrLoad(ctx context.Context, load func(context.Context) (T, error)) (T, error) {
	if c == nil || c.backend == nil {
		return load(ctx)
	}

	raw, ok, err := c.backend.Get(ctx, c.key)
	if err != nil {
		slog.Warn("cache read failed", "key", c.key, "error", err)
	}

	if ok {
		var value T
		if err := json.Unmarshal(raw, &value); err == nil {
			return value, nil
		}

		slog.Warn("discarding undecodable cache entry", "key", c.key)
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return value, nil
	}

	if err := c.backend.Set(ctx, c.key, payload, c.ttl); err != nil {
		slog.Warn("cache write failed", "key", c.key, "error", err)
	}

	return value, nil
}

// Invalidate drops the cached value so the next read goes to the store.
func (c *Cache[T]) Invalidate(ctx context.Context) error {
	if c == nil || c.backend == nil {
		return nil
	}

	if err := c.backend.Delete(ctx, c.key); err != nil {
		return fmt.Errorf("invalidating %s: %w", c.key, err)
	}

	return nil
}
