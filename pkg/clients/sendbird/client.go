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

package sendbird

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gojek/heimdall/v7"
	"github.com/sirupsen/logrus"

	"github.com/BBQAnChang/SBHomework/pkg/api"
	"github.com/BBQAnChang/SBHomework/pkg/logger"
	"github.com/BBQAnChang/SBHomework/pkg/request"
	"github.com/BBQAnChang/SBHomework/pkg/request/httpclient"
)

const (
	backendName = "sendbird"

	// DefaultBaseURL is expanded with the application id of each request
	DefaultBaseURL = "https://api-{application_id}.sendbird.com/v3"

	applicationIDPlaceholder = "{application_id}"
)

// Config holds the sendbird client settings
type Config struct {
	BaseURL       string `mapstructure:"base_url"`
	ApplicationID string `mapstructure:"application_id"`
	APIToken      string `mapstructure:"api_token"`
	RetryCount    int    `mapstructure:"retry_count"`
}

// Client talks to the Sendbird platform API. Credentials may be replaced at
// any time; a request uses the pair installed when it starts.
type Client struct {
	client  heimdall.Client
	baseURL string

	mu            sync.RWMutex
	applicationID string
	apiToken      string
}

// NewClient creates a sendbird client over a hystrix-wrapped heimdall client
func NewClient(cfg Config,
	poolCfg httpclient.ConnectionPoolConfig,
	hystrixCfg httpclient.HystrixResiliencyConfig) (*Client, error) {

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	var retrier heimdall.Retriable
	if cfg.RetryCount > 0 {
		retrier = heimdall.NewRetrier(heimdall.NewConstantBackoff(100*time.Millisecond, 50*time.Millisecond))
	}

	client, err := httpclient.InitializeClient(
		backendName,
		poolCfg,
		hystrixCfg,
		retrier,
		cfg.RetryCount,
		nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize http client: %w", err)
	}

	return &Client{
		client:        client,
		baseURL:       baseURL,
		applicationID: cfg.ApplicationID,
		apiToken:      cfg.APIToken,
	}, nil
}

func (c *Client) SetCredentials(applicationID, apiToken string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applicationID = applicationID
	c.apiToken = apiToken
}

func (c *Client) credentials() (string, string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.applicationID, c.apiToken
}

// Request sends req and decodes a successful response into out. out may be
// nil when the response body is not needed.
func (c *Client) Request(ctx context.Context, req api.Request, out interface{}) error {
	applicationID, apiToken := c.credentials()
	if applicationID == "" || apiToken == "" {
		return api.ErrInvalidCredentials
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, api.DefaultTimeout)
		defer cancel()
	}

	log := logger.Logger(ctx).WithFields(logrus.Fields{
		"service": backendName,
		"method":  req.Method(),
		"path":    req.Path(),
	})

	var body []byte
	if payload := req.Body(); payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	url := c.endpoint(applicationID, req)
	httpReq, err := request.NewRequest(ctx, req.Method(), url, body)
	if err != nil {
		return err
	}

	headers := map[string]string{
		"Api-Token":    apiToken,
		"Content-Type": "application/json; charset=utf8",
		"Accept":       "application/json",
	}
	for key, value := range req.Header() {
		headers[key] = value
	}
	httpReq.SetHeaders(headers)

	response, statusCode, err := httpReq.MakeRequest(c.client, methodName(req), backendName)
	if statusCode < http.StatusOK || statusCode >= http.StatusMultipleChoices {
		apiErr := decodeError(response)
		if apiErr != nil {
			log.WithField("code", apiErr.Code).WithError(apiErr).Warn("sendbird api returned an error")
			return apiErr
		}
		if err != nil {
			return err
		}
		return fmt.Errorf("unexpected status code: %d, response: %s", statusCode, string(response))
	}
	if err != nil {
		return err
	}

	if out == nil || len(response) == 0 {
		return nil
	}
	if err := json.Unmarshal(response, out); err != nil {
		log.WithError(err).Error("failed to decode sendbird response")
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) endpoint(applicationID string, req api.Request) string {
	base := strings.ReplaceAll(c.baseURL, applicationIDPlaceholder, applicationID)
	url := base + req.Path()
	if query := req.Query(); len(query) > 0 {
		url += "?" + query.Encode()
	}
	return url
}

// decodeError returns the API error payload carried by body, if any
func decodeError(body []byte) *api.ErrorResponse {
	if len(body) == 0 {
		return nil
	}
	var apiErr api.ErrorResponse
	if err := json.Unmarshal(body, &apiErr); err != nil {
		return nil
	}
	if apiErr.Message == "" && apiErr.Code == 0 {
		return nil
	}
	return &apiErr
}

func methodName(req api.Request) string {
	name := fmt.Sprintf("%T", req)
	if idx := strings.LastIndex(name, "."); idx != -1 {
		name = name[idx+1:]
	}
	return "backend." + backendName + "." + name
}

// IsNotFound reports whether err is a Sendbird "resource not found" error
func IsNotFound(err error) bool {
	var apiErr *api.ErrorResponse
	return errors.As(err, &apiErr) && apiErr.Code == codeResourceNotFound
}

const codeResourceNotFound = 400201
