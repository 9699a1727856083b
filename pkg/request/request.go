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

package request

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gojek/heimdall/v7"
	"github.com/opentracing-contrib/go-stdlib/nethttp"
	"github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"

	"github.com/BBQAnChang/SBHomework/pkg/logger"
)

// Request is a single outbound HTTP call made through a heimdall client
type Request struct {
	ctx     context.Context
	request *http.Request
}

// NewRequest prepares a request; a nil or empty body sends no payload
func NewRequest(ctx context.Context, method, url string, body []byte) (*Request, error) {
	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request for %s: %w", method, url, err)
	}

	return &Request{ctx: ctx, request: req}, nil
}

func (r *Request) SetHeaders(headers map[string]string) {
	for key, value := range headers {
		r.request.Header.Set(key, value)
	}
}

// HTTPRequest exposes the underlying request
func (r *Request) HTTPRequest() *http.Request {
	return r.request
}

// MakeRequest sends the request and returns the response body and status code.
// methodName names the tracing span; backend tags the log entries.
func (r *Request) MakeRequest(client heimdall.Client, methodName, backend string) ([]byte, int, error) {
	log := logger.Logger(r.ctx).WithFields(logrus.Fields{
		"backend": backend,
		"method":  methodName,
		"verb":    r.request.Method,
		"path":    r.request.URL.Path,
	})

	req, ht := nethttp.TraceRequest(opentracing.GlobalTracer(), r.request, nethttp.OperationName(methodName))
	defer ht.Finish()

	start := time.Now()
	response, err := client.Do(req)
	elapsed := time.Since(start)

	// heimdall returns the last response alongside the error for 5xx replies
	if response == nil {
		log.WithError(err).WithField("duration", elapsed).Error("request failed")
		return nil, 0, fmt.Errorf("failed to send request: %w", err)
	}
	defer response.Body.Close()

	body, readErr := io.ReadAll(response.Body)
	if readErr != nil {
		log.WithError(readErr).Error("failed to read response body")
		return nil, response.StatusCode, fmt.Errorf("failed to read response body: %w", readErr)
	}

	log = log.WithFields(logrus.Fields{
		"status":   response.StatusCode,
		"duration": elapsed,
	})
	if err != nil {
		log.WithError(err).Warn("request completed with error")
		return body, response.StatusCode, fmt.Errorf("request failed: %w", err)
	}

	log.Debug("request completed")
	return body, response.StatusCode, nil
}
