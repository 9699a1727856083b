package usermanager

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/BBQAnChang/SBHomework/pkg/api"
	"github.com/BBQAnChang/SBHomework/pkg/queue"
	"github.com/BBQAnChang/SBHomework/pkg/types"
)

// createJob is one queued creation; the outcome is sent on result exactly once
type createJob struct {
	ctx    context.Context
	params types.UserCreationParams
	result chan createResult
}

type createResult struct {
	user *types.User
	err  error
}

// CreateUser creates a user through the rate-limited creation queue and caches
// it. ErrQueueFull is returned at once, without a remote call, when the queue
// is at capacity. Cancelling ctx stops the wait but not a dispatched request.
//
// InitApplication stops the queue without draining it, so a creation still
// pending at that point waits until the next enqueue restarts the queue. With a
// ctx that has no deadline that wait is unbounded.
func (m *UserManager) CreateUser(ctx context.Context, params types.UserCreationParams) (user *types.User, err error) {
	start := time.Now()
	defer func() { m.metrics.RecordOperation(ctx, opCreateUser, start, err) }()

	if err := m.ready(); err != nil {
		return nil, err
	}

	job := createJob{
		ctx:    context.WithoutCancel(ctx),
		params: params,
		result: make(chan createResult, 1),
	}

	if err := m.queue.Enqueue(queue.Item[createJob]{Element: job, Execute: m.executeCreate}); err != nil {
		m.opLogger(ctx, opCreateUser).WithField("user_id", params.UserID).Warn("creation queue is full")
		return nil, err
	}

	select {
	case res := <-job.result:
		return res.user, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (m *UserManager) executeCreate(job createJob) {
	user, err := m.createRemote(job.ctx, job.params)
	job.result <- createResult{user: user, err: err}
}

// createRemote issues the create call and caches the returned record
func (m *UserManager) createRemote(ctx context.Context, params types.UserCreationParams) (*types.User, error) {
	log := m.opLogger(ctx, opCreateUser).WithFields(logrus.Fields{
		"user_id": params.UserID,
	})

	var resp api.UserResponse
	if err := m.network.Request(ctx, api.CreateUser{Params: params}, &resp); err != nil {
		log.WithError(err).Error("failed to create user")
		return nil, remoteError(opCreateUser, err)
	}

	user := resp.ToUser()
	m.cacheUser(ctx, user)

	log.Info("user created")
	return &user, nil
}

// cacheUser writes user through to the cache. Write failures are logged and
// never change the caller-visible result.
func (m *UserManager) cacheUser(ctx context.Context, user types.User) {
	if err := m.storage.User.Upsert(ctx, user); err != nil {
		m.opLogger(ctx, "cache_upsert").WithError(err).WithField("user_id", user.UserID).
			Error("failed to cache user")
	}
}
