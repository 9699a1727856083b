/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package inmemory

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/BBQAnChang/SBHomework/pkg/cache/types"
)

// Config holds the in-memory cache settings. Durations are in seconds;
// a non-positive DefaultExpiration keeps entries until they are deleted.
type Config struct {
	DefaultExpiration int32 `mapstructure:"default_expiration"`
	CleanupInterval   int32 `mapstructure:"cleanup_interval"`
}

// Cache is a process-local cache backed by patrickmn/go-cache
type Cache struct {
	client *gocache.Cache
}

// NewCache creates a new in-memory cache
func NewCache(config *Config) (*Cache, error) {
	if config == nil {
		return nil, fmt.Errorf("inmemory cache config is required")
	}

	defaultExpiration := gocache.NoExpiration
	if config.DefaultExpiration > 0 {
		defaultExpiration = time.Duration(config.DefaultExpiration) * time.Second
	}

	cleanupInterval := time.Duration(0)
	if config.CleanupInterval > 0 {
		cleanupInterval = time.Duration(config.CleanupInterval) * time.Second
	}

	return &Cache{
		client: gocache.New(defaultExpiration, cleanupInterval),
	}, nil
}

func (c *Cache) Get(_ context.Context, key string) (interface{}, error) {
	val, found := c.client.Get(key)
	if !found {
		return nil, fmt.Errorf("%w: %s", types.ErrKeyNotFound, key)
	}
	return val, nil
}

func (c *Cache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	if expiration < 0 {
		expiration = gocache.NoExpiration
	}
	c.client.Set(key, value, expiration)
	return nil
}

func (c *Cache) Delete(_ context.Context, key string) error {
	c.client.Delete(key)
	return nil
}

// GetByPattern returns a copy of every unexpired entry whose key matches pattern
func (c *Cache) GetByPattern(_ context.Context, pattern string) (map[string]interface{}, error) {
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	result := make(map[string]interface{})
	for key, item := range c.client.Items() {
		if matchPattern(pattern, key) {
			result[key] = item.Object
		}
	}
	return result, nil
}

func (c *Cache) DeleteByPattern(ctx context.Context, pattern string) error {
	entries, err := c.GetByPattern(ctx, pattern)
	if err != nil {
		return err
	}
	for key := range entries {
		c.client.Delete(key)
	}
	return nil
}

// matchPattern treats a trailing-only "*" as a plain prefix match so that keys
// containing "/" behave the same way they do with redis SCAN MATCH
func matchPattern(pattern, key string) bool {
	prefix, isPrefix := strings.CutSuffix(pattern, "*")
	if isPrefix && !strings.ContainsAny(prefix, `*?[\`) {
		return strings.HasPrefix(key, prefix)
	}
	ok, _ := path.Match(pattern, key)
	return ok
}
