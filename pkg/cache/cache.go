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

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BBQAnChang/SBHomework/pkg/cache/inmemory"
	"github.com/BBQAnChang/SBHomework/pkg/cache/redis"
	"github.com/BBQAnChang/SBHomework/pkg/cache/types"
)

const (
	DriverMemory = "memory"
	DriverRedis  = "redis"

	// NoExpiration keeps the entry until it is explicitly deleted
	NoExpiration = types.NoExpiration
)

// ErrKeyNotFound is returned by Get when the key does not exist
var ErrKeyNotFound = types.ErrKeyNotFound

// Cache is the key-value abstraction the stores are built on.
// Keys are plain strings; patterns use glob syntax ("user:*").
type Cache interface {
	// Get returns the value stored for key or ErrKeyNotFound
	Get(ctx context.Context, key string) (interface{}, error)

	// Set stores value under key. NoExpiration keeps it forever
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error

	// Delete removes the key. Deleting a missing key is not an error
	Delete(ctx context.Context, key string) error

	// GetByPattern returns every key/value pair whose key matches pattern
	GetByPattern(ctx context.Context, pattern string) (map[string]interface{}, error)

	// DeleteByPattern removes every key matching pattern
	DeleteByPattern(ctx context.Context, pattern string) error
}

// Config selects and configures the cache driver
type Config struct {
	Driver   string           `mapstructure:"driver"`
	InMemory *inmemory.Config `mapstructure:"inmemory"`
	Redis    *redis.Config    `mapstructure:"redis"`
}

// New creates the cache configured by config.Driver
func New(config *Config) (Cache, error) {
	if config == nil {
		return nil, errors.New("cache config is required")
	}

	switch config.Driver {
	case DriverMemory, "":
		cfg := config.InMemory
		if cfg == nil {
			cfg = &inmemory.Config{}
		}
		return inmemory.NewCache(cfg)
	case DriverRedis:
		if config.Redis == nil {
			return nil, errors.New("redis cache config is required for redis driver")
		}
		return redis.NewCache(config.Redis)
	default:
		return nil, fmt.Errorf("unsupported cache driver: %s", config.Driver)
	}
}

// compile-time interface compliance checks
var (
	_ Cache = (*inmemory.Cache)(nil)
	_ Cache = (*redis.Cache)(nil)
)
