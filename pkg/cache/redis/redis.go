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

package redis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/redis/go-redis/extra/redisotel/v9"
	goredis "github.com/redis/go-redis/v9"

	"github.com/BBQAnChang/SBHomework/pkg/cache/types"
)

const (
	scanBatchSize = 100
	pingTimeout   = 5 * time.Second

	connectInitialInterval = 200 * time.Millisecond
	connectMaxInterval     = 2 * time.Second
)

// Config holds the redis connection settings
type Config struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database int    `mapstructure:"database"`
	PoolSize int    `mapstructure:"pool_size"`
	// extra PING attempts at startup, spaced with exponential backoff. default: 0
	ConnectRetries int `mapstructure:"connect_retries"`
}

// Cache is a redis-backed cache; values are stored as strings
type Cache struct {
	client *goredis.Client
}

// NewCache connects to redis, instruments the client with OpenTelemetry and
// verifies the connection with a PING
func NewCache(config *Config) (*Cache, error) {
	if config == nil {
		return nil, errors.New("redis cache config is required")
	}
	if config.Host == "" {
		return nil, errors.New("redis cache config is missing required field: host")
	}

	port := config.Port
	if port == "" {
		port = strconv.Itoa(6379)
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     net.JoinHostPort(config.Host, port),
		Username: config.Username,
		Password: config.Password,
		DB:       config.Database,
		PoolSize: config.PoolSize,
	})

	if err := redisotel.InstrumentTracing(client); err != nil {
		return nil, fmt.Errorf("failed to instrument redis tracing: %w", err)
	}
	if err := redisotel.InstrumentMetrics(client); err != nil {
		return nil, fmt.Errorf("failed to instrument redis metrics: %w", err)
	}

	if err := ping(client, config.ConnectRetries); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Cache{client: client}, nil
}

func ping(client *goredis.Client, retries int) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = connectInitialInterval
	policy.MaxInterval = connectMaxInterval

	_, err := backoff.Retry(context.Background(), func() (struct{}, error) {
		ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		defer cancel()
		return struct{}{}, client.Ping(ctx).Err()
	}, backoff.WithBackOff(policy), backoff.WithMaxTries(uint(max(retries, 0))+1))
	return err
}

func (c *Cache) Get(ctx context.Context, key string) (interface{}, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, fmt.Errorf("%w: %s", types.ErrKeyNotFound, key)
		}
		return nil, fmt.Errorf("failed to get key %s from redis: %w", key, err)
	}
	return val, nil
}

func (c *Cache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	// go-redis reads -1 as KEEPTTL, which is not what NoExpiration means here
	if expiration < 0 {
		expiration = 0
	}
	if err := c.client.Set(ctx, key, value, expiration).Err(); err != nil {
		return fmt.Errorf("failed to set key %s in redis: %w", key, err)
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete key %s from redis: %w", key, err)
	}
	return nil
}

func (c *Cache) GetByPattern(ctx context.Context, pattern string) (map[string]interface{}, error) {
	keys, err := c.scanKeys(ctx, pattern)
	if err != nil {
		return nil, err
	}

	result := make(map[string]interface{}, len(keys))
	for start := 0; start < len(keys); start += scanBatchSize {
		end := min(start+scanBatchSize, len(keys))
		batch := keys[start:end]

		values, err := c.client.MGet(ctx, batch...).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to fetch keys matching %s: %w", pattern, err)
		}
		for i, val := range values {
			// key expired or was deleted between SCAN and MGET
			if val == nil {
				continue
			}
			result[batch[i]] = val
		}
	}

	return result, nil
}

func (c *Cache) DeleteByPattern(ctx context.Context, pattern string) error {
	keys, err := c.scanKeys(ctx, pattern)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}

	pipe := c.client.Pipeline()
	for start := 0; start < len(keys); start += scanBatchSize {
		end := min(start+scanBatchSize, len(keys))
		pipe.Del(ctx, keys[start:end]...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete keys matching %s: %w", pattern, err)
	}
	return nil
}

// Close releases the underlying connection pool
func (c *Cache) Close() error {
	return c.client.Close()
}

func (c *Cache) scanKeys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	iter := c.client.Scan(ctx, 0, pattern, scanBatchSize).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan keys matching %s: %w", pattern, err)
	}
	return keys, nil
}
