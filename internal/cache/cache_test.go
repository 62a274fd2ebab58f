package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/ilara/internal/cache"
)

type row struct {
	Name  string
	Stock int
}

func newRedisBackend(t *testing.T) (*cache.Redis, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return cache.NewRedisFromClient(client, "ilara:"), mr
}

func countingLoader(calls *int, rows []row) func(context.Context) ([]row, error) {
	return func(context.Context) ([]row, error) {
		*calls++
		return rows, nil
	}
}

func TestCache_GetOrLoad(t *testing.T) {
	backends := map[string]func(t *testing.T) cache.Backend{
		"Memory": func(*testing.T) cache.Backend { return cache.NewMemory() },
		"Redis": func(t *testing.T) cache.Backend {
			b, _ := newRedisBackend(t)
			return b
		},
	}

	for name, newBackend := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			c := cache.New[[]row](newBackend(t), "products", time.Minute)

			calls := 0
			load := countingLoader(&calls, []row{{Name: "Lipstick", Stock: 5}})

			got, err := c.GetOrLoad(ctx, load)
			require.NoError(t, err)
			assert.Equal(t, []row{{Name: "Lipstick", Stock: 5}}, got)

			got, err = c.GetOrLoad(ctx, load)
			require.NoError(t, err)
			assert.Equal(t, []row{{Name: "Lipstick", Stock: 5}}, got)
			assert.Equal(t, 1, calls, "second read should be served from cache")

			require.NoError(t, c.Invalidate(ctx))

			_, err = c.GetOrLoad(ctx, load)
			require.NoError(t, err)
			assert.Equal(t, 2, calls, "read after invalidate should hit the loader")
		})
	}
}

func TestCache_RedisTTLExpires(t *testing.T) {
	ctx := context.Background()
	backend, mr := newRedisBackend(t)
	c := cache.New[[]row](backend, "ledger", 30*time.Second)

	calls := 0
	load := countingLoader(&calls, []row{{Name: "x"}})

	_, err := c.GetOrLoad(ctx, load)
	require.NoError(t, err)
	assert.True(t, mr.Exists("ilara:ledger"))

	mr.FastForward(31 * time.Second)

	_, err = c.GetOrLoad(ctx, load)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestCache_LoaderErrorIsNotCached(t *testing.T) {
	ctx := context.Background()
	c := cache.New[[]row](cache.NewMemory(), "products", time.Minute)

	_, err := c.GetOrLoad(ctx, func(context.Context) ([]row, error) {
		return nil, errors.New("db down")
	})
	require.Error(t, err)

	calls := 0
	_, err = c.GetOrLoad(ctx, countingLoader(&calls, nil))
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestCache_RedisUnavailableFallsBackToLoader(t *testing.T) {
	ctx := context.Background()
	backend, mr := newRedisBackend(t)
	mr.Close()

	c := cache.New[[]row](backend, "products", time.Minute)

	calls := 0
	got, err := c.GetOrLoad(ctx, countingLoader(&calls, []row{{Name: "Blush"}}))
	require.NoError(t, err)
	assert.Equal(t, []row{{Name: "Blush"}}, got)
	assert.Error(t, c.Invalidate(ctx))
}

func TestCache_NilAlwaysLoads(t *testing.T) {
	var c *cache.Cache[[]row]

	calls := 0
	_, err := c.GetOrLoad(context.Background(), countingLoader(&calls, nil))
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.NoError(t, c.Invalidate(context.Background()))
}
