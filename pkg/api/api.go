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

package api

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// DefaultTimeout bounds a single request when the caller sets no deadline
const DefaultTimeout = 10 * time.Second

// ErrInvalidCredentials is returned before any request is sent when the
// application id or API token is missing
var ErrInvalidCredentials = errors.New("invalid credentials: application id and api token are required")

// Request describes one call to the platform API. Paths are relative to the
// application's base URL.
type Request interface {
	Method() string
	Path() string
	Query() url.Values
	// Body returns the JSON payload, or nil when the request has none
	Body() interface{}
	Header() map[string]string
}

// ErrorResponse is the error payload returned by the platform API
type ErrorResponse struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
	Err     bool   `json:"error"`
}

func (e *ErrorResponse) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Code, e.Message)
}

// baseRequest supplies the optional parts of Request
type baseRequest struct{}

func (baseRequest) Query() url.Values         { return nil }
func (baseRequest) Body() interface{}         { return nil }
func (baseRequest) Header() map[string]string { return nil }
