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

package usermanager

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/BBQAnChang/SBHomework/pkg/api"
	"github.com/BBQAnChang/SBHomework/pkg/cache"
	"github.com/BBQAnChang/SBHomework/pkg/clients/sendbird"
	"github.com/BBQAnChang/SBHomework/pkg/config"
	"github.com/BBQAnChang/SBHomework/pkg/logger"
	"github.com/BBQAnChang/SBHomework/pkg/queue"
	"github.com/BBQAnChang/SBHomework/pkg/store"
	"github.com/BBQAnChang/SBHomework/pkg/telemetry"
)

//go:generate mockgen -destination=mocks/mock_network_client.go -package=mocks . NetworkClient

// NetworkClient sends typed requests to the platform API
type NetworkClient interface {
	SetCredentials(applicationID, apiToken string)
	Request(ctx context.Context, req api.Request, out interface{}) error
}

const (
	opInitApplication = "init_application"
	opCreateUser      = "create_user"
	opCreateUsers     = "create_users"
	opUpdateUser      = "update_user"
	opGetUser         = "get_user"
	opGetUsers        = "get_users"

	createQueueName = "create_user"
)

// UserManager keeps a local user cache in sync with the remote user API and
// rate-limits user creation. It is safe for concurrent use.
type UserManager struct {
	network NetworkClient
	storage *store.Store
	queue   *queue.Queue[createJob]
	closer  io.Closer

	maxCreateCount  int
	bulkCreateDelay time.Duration
	pageLimit       int
	metrics         *telemetry.OperationMetrics

	mu          sync.RWMutex
	initialized bool
}

// New creates an uninitialized UserManager; call InitApplication before use
func New(network NetworkClient, storage *store.Store, opts ...Option) (*UserManager, error) {
	if network == nil {
		return nil, errors.New("network client is required")
	}
	if storage == nil {
		return nil, errors.New("storage is required")
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.pageLimit <= 0 {
		return nil, fmt.Errorf("page limit must be positive, got %d", o.pageLimit)
	}
	if o.bulkCreateDelay < 0 {
		return nil, fmt.Errorf("bulk create delay must not be negative, got %s", o.bulkCreateDelay)
	}

	q, err := queue.New[createJob](o.maxCreateCount,
		queue.WithInterval(o.queueInterval),
		queue.WithName(createQueueName),
		queue.WithMetrics(o.queueMetrics))
	if err != nil {
		return nil, fmt.Errorf("failed to create creation queue: %w", err)
	}

	return &UserManager{
		network:         network,
		storage:         storage,
		queue:           q,
		maxCreateCount:  o.maxCreateCount,
		bulkCreateDelay: o.bulkCreateDelay,
		pageLimit:       o.pageLimit,
		metrics:         o.operationMetrics,
	}, nil
}

// NewFromConfig wires the Sendbird client, the configured cache backend and
// telemetry into a UserManager
func NewFromConfig(ctx context.Context, cfg *config.AppConfig) (*UserManager, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	if err := telemetry.Init(ctx, cfg.Telemetry); err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	meter := telemetry.GetMeter(telemetry.MeterName)
	if err := telemetry.InitOperationMetrics(meter); err != nil {
		return nil, fmt.Errorf("failed to initialize operation metrics: %w", err)
	}
	if err := telemetry.InitQueueMetrics(meter); err != nil {
		return nil, fmt.Errorf("failed to initialize queue metrics: %w", err)
	}

	c, err := cache.New(&cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	client, err := sendbird.NewClient(cfg.Sendbird, cfg.HTTPClient.ConnectionPoolConfig, cfg.HTTPClient.HystrixResiliencyConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sendbird client: %w", err)
	}

	m, err := New(client, store.New(c),
		WithMaxCreateCount(cfg.UserManager.MaxCreateCount),
		WithQueueInterval(cfg.UserManager.QueueInterval),
		WithBulkCreateDelay(cfg.UserManager.BulkCreateDelay),
		WithPageLimit(cfg.UserManager.PageLimit),
		WithOperationMetrics(telemetry.GetOperationMetrics()),
		WithQueueMetrics(telemetry.GetQueueMetrics()))
	if err != nil {
		return nil, err
	}

	if closer, ok := c.(io.Closer); ok {
		m.closer = closer
	}
	return m, nil
}

// InitApplication installs the credentials used by every later request. When
// applicationID differs from the persisted one the user cache is cleared first.
// The creation queue is stopped; queued creations resume with the next one.
func (m *UserManager) InitApplication(ctx context.Context, applicationID, apiToken string) (err error) {
	start := time.Now()
	defer func() { m.metrics.RecordOperation(ctx, opInitApplication, start, err) }()

	if applicationID == "" || apiToken == "" {
		return ErrInvalidCredentials
	}

	log := logger.Logger(ctx).WithFields(logrus.Fields{
		"component":      "usermanager",
		"application_id": applicationID,
	})

	m.mu.Lock()
	defer m.mu.Unlock()

	previous, err := m.storage.Meta.GetApplicationID(ctx)
	if err != nil {
		log.WithError(err).Warn("failed to read stored application id, treating as changed")
	}

	if previous != applicationID {
		log.WithField("previous_application_id", previous).Info("application changed, clearing user cache")
		if err := m.storage.User.Clear(ctx); err != nil {
			return fmt.Errorf("failed to clear user cache: %w", err)
		}
		if err := m.storage.Meta.SetApplicationID(ctx, applicationID); err != nil {
			return fmt.Errorf("failed to persist application id: %w", err)
		}
	}

	m.network.SetCredentials(applicationID, apiToken)
	m.queue.Stop()
	m.initialized = true

	log.Info("user manager initialized")
	return nil
}

// Storage gives read access to the cached users
func (m *UserManager) Storage() store.UserStoreInterface {
	return m.storage.User
}

// Close stops the creation queue and releases the cache backend
func (m *UserManager) Close() error {
	m.queue.Stop()
	if m.closer != nil {
		return m.closer.Close()
	}
	return nil
}

func (m *UserManager) ready() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.initialized {
		return ErrNotInitialized
	}
	return nil
}

func (m *UserManager) opLogger(ctx context.Context, op string) *logrus.Entry {
	return logger.Logger(ctx).WithFields(logrus.Fields{
		"component": "usermanager",
		"operation": op,
	})
}
