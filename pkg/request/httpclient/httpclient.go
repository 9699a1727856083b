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

package httpclient

import (
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gojek/heimdall/v7"
	"github.com/gojek/heimdall/v7/hystrix"
	"github.com/opentracing-contrib/go-stdlib/nethttp"
)

// ConnectionPoolConfig tunes the pooled transport. Durations are in milliseconds.
type ConnectionPoolConfig struct {
	Timeout                   int64 `mapstructure:"timeout"`
	KeepAliveTimeout          int64 `mapstructure:"keep_alive_timeout"`
	IdleConnTimeout           int64 `mapstructure:"idle_conn_timeout"`
	MaxIdleConnections        int   `mapstructure:"max_idle_connections"`
	MaxIdleConnectionsPerHost int   `mapstructure:"max_idle_connections_per_host"`
}

// HystrixResiliencyConfig configures the circuit breaker wrapping every request.
// Timeouts and windows are in milliseconds.
type HystrixResiliencyConfig struct {
	MaxConcurrentRequests     int   `mapstructure:"max_concurrent_requests"`
	RequestVolumeThreshold    int   `mapstructure:"request_volume_threshold"`
	CircuitBreakerSleepWindow int   `mapstructure:"circuit_breaker_sleep_window"`
	ErrorPercentThreshold     int   `mapstructure:"error_percent_threshold"`
	CircuitBreakerTimeout     int64 `mapstructure:"circuit_breaker_timeout"`
}

const (
	defaultTimeout                   = 10 * time.Second
	defaultKeepAlive                 = 30 * time.Second
	defaultIdleConnTimeout           = 90 * time.Second
	defaultMaxIdleConnections        = 100
	defaultMaxIdleConnectionsPerHost = 10

	defaultMaxConcurrentRequests  = 100
	defaultRequestVolumeThreshold = 20
	defaultSleepWindow            = 5000
	defaultErrorPercentThreshold  = 50
)

func millis(value int64, fallback time.Duration) time.Duration {
	if value <= 0 {
		return fallback
	}
	return time.Duration(value) * time.Millisecond
}

func intOr(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}

// InitializeClient builds a hystrix-wrapped heimdall client named commandName.
// A nil retrier or a zero retryCount disables retries; tlsConfig may be nil.
func InitializeClient(
	commandName string,
	poolCfg ConnectionPoolConfig,
	hystrixCfg HystrixResiliencyConfig,
	retrier heimdall.Retriable,
	retryCount int,
	tlsConfig *tls.Config,
) (heimdall.Client, error) {
	if commandName == "" {
		return nil, errors.New("http client command name is required")
	}

	timeout := millis(poolCfg.Timeout, defaultTimeout)

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: millis(poolCfg.KeepAliveTimeout, defaultKeepAlive),
		}).DialContext,
		MaxIdleConns:        intOr(poolCfg.MaxIdleConnections, defaultMaxIdleConnections),
		MaxIdleConnsPerHost: intOr(poolCfg.MaxIdleConnectionsPerHost, defaultMaxIdleConnectionsPerHost),
		IdleConnTimeout:     millis(poolCfg.IdleConnTimeout, defaultIdleConnTimeout),
		TLSClientConfig:     tlsConfig,
	}

	httpClient := &http.Client{
		Timeout:   timeout,
		Transport: &nethttp.Transport{RoundTripper: transport},
	}

	opts := []hystrix.Option{
		hystrix.WithHTTPClient(httpClient),
		hystrix.WithHTTPTimeout(timeout),
		hystrix.WithCommandName(commandName),
		hystrix.WithHystrixTimeout(millis(hystrixCfg.CircuitBreakerTimeout, timeout)),
		hystrix.WithMaxConcurrentRequests(intOr(hystrixCfg.MaxConcurrentRequests, defaultMaxConcurrentRequests)),
		hystrix.WithRequestVolumeThreshold(intOr(hystrixCfg.RequestVolumeThreshold, defaultRequestVolumeThreshold)),
		hystrix.WithSleepWindow(intOr(hystrixCfg.CircuitBreakerSleepWindow, defaultSleepWindow)),
		hystrix.WithErrorPercentThreshold(intOr(hystrixCfg.ErrorPercentThreshold, defaultErrorPercentThreshold)),
	}
	if retrier != nil && retryCount > 0 {
		opts = append(opts, hystrix.WithRetrier(retrier), hystrix.WithRetryCount(retryCount))
	}

	return hystrix.NewClient(opts...), nil
}
