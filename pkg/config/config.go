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

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"

	"github.com/BBQAnChang/SBHomework/pkg/cache"
	"github.com/BBQAnChang/SBHomework/pkg/clients/sendbird"
	"github.com/BBQAnChang/SBHomework/pkg/logger"
	"github.com/BBQAnChang/SBHomework/pkg/request/httpclient"
	"github.com/BBQAnChang/SBHomework/pkg/telemetry"
)

const (
	envPrefix        = "USERMANAGER"
	envAppEnv        = "APP_ENV"
	defaultEnv       = "default"
	defaultConfigDir = "appconfig"
)

var (
	config     *AppConfig
	configOnce sync.Once
	configErr  error
)

type App struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type HTTPClient struct {
	ConnectionPoolConfig    httpclient.ConnectionPoolConfig    `mapstructure:"connection_pool"`
	HystrixResiliencyConfig httpclient.HystrixResiliencyConfig `mapstructure:"hystrix"`
}

// UserManager tunes the coordinator
type UserManager struct {
	MaxCreateCount  int           `mapstructure:"max_create_count"`
	QueueInterval   time.Duration `mapstructure:"queue_interval"`
	BulkCreateDelay time.Duration `mapstructure:"bulk_create_delay"`
	PageLimit       int           `mapstructure:"page_limit"`
}

type Auth struct {
	Enabled bool     `mapstructure:"enabled"`
	APIKeys []string `mapstructure:"api_keys"`
}

type CORS struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

type APIServer struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Auth Auth   `mapstructure:"auth"`
	CORS CORS   `mapstructure:"cors"`
}

// Addr returns the host:port the API server listens on
func (s APIServer) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type AppConfig struct {
	App         App              `mapstructure:"app"`
	Logger      logger.Config    `mapstructure:"logger"`
	Sendbird    sendbird.Config  `mapstructure:"sendbird"`
	HTTPClient  HTTPClient       `mapstructure:"http_client"`
	Cache       cache.Config     `mapstructure:"cache"`
	UserManager UserManager      `mapstructure:"user_manager"`
	Telemetry   telemetry.Config `mapstructure:"telemetry"`
	APIServer   APIServer        `mapstructure:"api_server"`
}

// GetConfig loads appconfig/<APP_ENV>.yaml once and returns the cached result
func GetConfig() (*AppConfig, error) {
	configOnce.Do(func() {
		env := os.Getenv(envAppEnv)
		if env == "" {
			env = defaultEnv
		}
		config, configErr = LoadConfig(filepath.Join(defaultConfigDir, env+".yaml"))
	})
	return config, configErr
}

// LoadConfig reads the YAML file at path. Every key can be overridden with a
// USERMANAGER_ prefixed environment variable, e.g. USERMANAGER_SENDBIRD_API_TOKEN.
func LoadConfig(path string) (*AppConfig, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	appConfig := &AppConfig{}
	if err := v.Unmarshal(appConfig); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := appConfig.Validate(); err != nil {
		return nil, err
	}
	return appConfig, nil
}

// Validate rejects settings the coordinator cannot run with
func (c *AppConfig) Validate() error {
	if c.UserManager.MaxCreateCount <= 0 {
		return fmt.Errorf("user_manager.max_create_count must be positive, got %d", c.UserManager.MaxCreateCount)
	}
	if c.UserManager.QueueInterval <= 0 {
		return fmt.Errorf("user_manager.queue_interval must be positive, got %s", c.UserManager.QueueInterval)
	}
	if c.UserManager.BulkCreateDelay < 0 {
		return fmt.Errorf("user_manager.bulk_create_delay must not be negative, got %s", c.UserManager.BulkCreateDelay)
	}
	if c.UserManager.PageLimit <= 0 {
		return fmt.Errorf("user_manager.page_limit must be positive, got %d", c.UserManager.PageLimit)
	}
	if c.APIServer.Auth.Enabled && len(c.APIServer.Auth.APIKeys) == 0 {
		return errors.New("api_server.auth.api_keys must not be empty when auth is enabled")
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "usermanager")
	v.SetDefault("app.environment", defaultEnv)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")

	v.SetDefault("sendbird.base_url", sendbird.DefaultBaseURL)
	v.SetDefault("sendbird.application_id", "")
	v.SetDefault("sendbird.api_token", "")
	v.SetDefault("sendbird.retry_count", 0)

	v.SetDefault("http_client.connection_pool.timeout", 10000)
	v.SetDefault("http_client.connection_pool.keep_alive_timeout", 30000)
	v.SetDefault("http_client.connection_pool.idle_conn_timeout", 90000)
	v.SetDefault("http_client.connection_pool.max_idle_connections", 100)
	v.SetDefault("http_client.connection_pool.max_idle_connections_per_host", 10)
	v.SetDefault("http_client.hystrix.max_concurrent_requests", 100)
	v.SetDefault("http_client.hystrix.request_volume_threshold", 20)
	v.SetDefault("http_client.hystrix.circuit_breaker_sleep_window", 5000)
	v.SetDefault("http_client.hystrix.error_percent_threshold", 50)
	v.SetDefault("http_client.hystrix.circuit_breaker_timeout", 10000)

	v.SetDefault("cache.driver", cache.DriverMemory)
	v.SetDefault("cache.inmemory.default_expiration", 0)
	v.SetDefault("cache.inmemory.cleanup_interval", 600)

	v.SetDefault("user_manager.max_create_count", 10)
	v.SetDefault("user_manager.queue_interval", time.Second)
	v.SetDefault("user_manager.bulk_create_delay", time.Second)
	v.SetDefault("user_manager.page_limit", 100)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "usermanager")
	v.SetDefault("telemetry.exporter", telemetry.ExporterOTLP)
	v.SetDefault("telemetry.otlp_endpoint", "")
	v.SetDefault("telemetry.insecure", false)

	v.SetDefault("api_server.host", "0.0.0.0")
	v.SetDefault("api_server.port", 8080)
	v.SetDefault("api_server.auth.enabled", false)
	v.SetDefault("api_server.cors.allowed_origins", []string{"*"})
	v.SetDefault("api_server.cors.allowed_methods", []string{"GET", "POST", "PUT", "OPTIONS"})
	v.SetDefault("api_server.cors.allowed_headers", []string{"Content-Type", "X-API-Key"})
}
