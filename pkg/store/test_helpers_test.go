package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/BBQAnChang/SBHomework/pkg/cache"
	"github.com/BBQAnChang/SBHomework/pkg/cache/inmemory"
	"github.com/BBQAnChang/SBHomework/pkg/cache/redis"
)

// cacheFactory builds a fresh cache for one test case
type cacheFactory func(t *testing.T) cache.Cache

// cacheDrivers lists every cache driver the stores are exercised against
var cacheDrivers = map[string]cacheFactory{
	"inmemory": func(t *testing.T) cache.Cache {
		t.Helper()
		c, err := inmemory.NewCache(&inmemory.Config{
			DefaultExpiration: 300,
			CleanupInterval:   600,
		})
		require.NoError(t, err)
		return c
	},
	"redis": func(t *testing.T) cache.Cache {
		t.Helper()
		mr := miniredis.RunT(t)
		c, err := redis.NewCache(&redis.Config{Host: mr.Host(), Port: mr.Port()})
		require.NoError(t, err)
		t.Cleanup(func() { _ = c.Close() })
		return c
	},
}

// forEachDriver runs fn once per cache driver as a subtest
func forEachDriver(t *testing.T, fn func(t *testing.T, newCache cacheFactory)) {
	for name, factory := range cacheDrivers {
		t.Run(name, func(t *testing.T) {
			fn(t, factory)
		})
	}
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	return context.Background()
}
