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

package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BBQAnChang/SBHomework/pkg/clients/sendbird"
	"github.com/BBQAnChang/SBHomework/pkg/config"
	"github.com/BBQAnChang/SBHomework/pkg/logger"
	"github.com/BBQAnChang/SBHomework/pkg/store"
	"github.com/BBQAnChang/SBHomework/pkg/types"
	"github.com/BBQAnChang/SBHomework/pkg/usermanager"
)

// UserService is the subset of the user manager exposed over HTTP
type UserService interface {
	CreateUser(ctx context.Context, params types.UserCreationParams) (*types.User, error)
	CreateUsers(ctx context.Context, params []types.UserCreationParams) ([]types.User, error)
	UpdateUser(ctx context.Context, params types.UserUpdateParams) (*types.User, error)
	GetUser(ctx context.Context, userID string) (*types.User, error)
	GetUsers(ctx context.Context, nicknameMatches string) ([]types.User, error)
	Storage() store.UserStoreInterface
}

var _ UserService = (*usermanager.UserManager)(nil)

type Handlers struct {
	config  *config.AppConfig
	service UserService
}

func NewHandlers(cfg *config.AppConfig, service UserService) *Handlers {
	return &Handlers{
		config:  cfg,
		service: service,
	}
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

// BulkCreateResponse reports the outcome of a bulk creation
type BulkCreateResponse struct {
	Created []types.User `json:"created"`
	Failed  []types.User `json:"failed,omitempty"`
}

// UsersResponse wraps a list of users
type UsersResponse struct {
	Users []types.User `json:"users"`
}

func (h *Handlers) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": h.config.App.Name,
		"version": h.config.App.Version,
		"status":  "running",
	})
}

func (h *Handlers) CreateUser(c *gin.Context) {
	var params types.UserCreationParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	user, err := h.service.CreateUser(c.Request.Context(), params)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *Handlers) CreateUsers(c *gin.Context) {
	var params []types.UserCreationParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	created, err := h.service.CreateUsers(c.Request.Context(), params)
	var bulkErr *usermanager.BulkCreateError
	if errors.As(err, &bulkErr) {
		logger.Logger(c.Request.Context()).WithError(err).Warn("bulk creation partially failed")
		c.JSON(http.StatusMultiStatus, BulkCreateResponse{Created: created, Failed: bulkErr.Failed})
		return
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, BulkCreateResponse{Created: created})
}

func (h *Handlers) UpdateUser(c *gin.Context) {
	var params types.UserUpdateParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	params.UserID = c.Param("id")

	user, err := h.service.UpdateUser(c.Request.Context(), params)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handlers) GetUser(c *gin.Context) {
	user, err := h.service.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handlers) GetUsers(c *gin.Context) {
	users, err := h.service.GetUsers(c.Request.Context(), c.Query("nickname"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, UsersResponse{Users: users})
}

// GetCachedUsers lists the locally cached users without contacting the backend
func (h *Handlers) GetCachedUsers(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		users []types.User
		err   error
	)
	if nickname := c.Query("nickname"); nickname != "" {
		users, err = h.service.Storage().GetByNickname(ctx, nickname)
	} else {
		users, err = h.service.Storage().GetAll(ctx)
	}
	if err != nil {
		logger.Logger(ctx).WithError(err).Error("failed to read cached users")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to read cached users"})
		return
	}
	c.JSON(http.StatusOK, UsersResponse{Users: users})
}

func (h *Handlers) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	entry := logger.Logger(c.Request.Context()).WithError(err).WithField("status", status)
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Warn("request rejected")
	}
	c.JSON(status, ErrorResponse{Error: err.Error()})
}

// statusFor maps user manager errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, usermanager.ErrEmptyFilter), errors.Is(err, usermanager.ErrEmptyUserID):
		return http.StatusBadRequest
	case errors.Is(err, usermanager.ErrQueueFull):
		return http.StatusTooManyRequests
	case errors.Is(err, usermanager.ErrNotInitialized), errors.Is(err, usermanager.ErrInvalidCredentials):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case sendbird.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, usermanager.ErrRemoteFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
