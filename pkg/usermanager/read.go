package usermanager

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/BBQAnChang/SBHomework/pkg/api"
	"github.com/BBQAnChang/SBHomework/pkg/types"
)

// UpdateUser changes the given attributes remotely and caches the result
func (m *UserManager) UpdateUser(ctx context.Context, params types.UserUpdateParams) (user *types.User, err error) {
	start := time.Now()
	defer func() { m.metrics.RecordOperation(ctx, opUpdateUser, start, err) }()

	if err := m.ready(); err != nil {
		return nil, err
	}
	if params.UserID == "" {
		return nil, ErrEmptyUserID
	}

	log := m.opLogger(ctx, opUpdateUser).WithField("user_id", params.UserID)

	var resp api.UserResponse
	if err := m.network.Request(ctx, api.UpdateUser{Params: params}, &resp); err != nil {
		log.WithError(err).Error("failed to update user")
		return nil, remoteError(opUpdateUser, err)
	}

	updated := resp.ToUser()
	m.cacheUser(ctx, updated)

	log.Info("user updated")
	return &updated, nil
}

// GetUser returns the cached user, fetching and caching it on a miss
func (m *UserManager) GetUser(ctx context.Context, userID string) (user *types.User, err error) {
	start := time.Now()
	defer func() { m.metrics.RecordOperation(ctx, opGetUser, start, err) }()

	if err := m.ready(); err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, ErrEmptyUserID
	}

	log := m.opLogger(ctx, opGetUser).WithField("user_id", userID)

	cached, err := m.storage.User.GetByID(ctx, userID)
	if err != nil {
		// read failures count as a miss
		log.WithError(err).Warn("failed to read user from cache")
	}
	if cached != nil {
		log.Debug("cache hit")
		return cached, nil
	}

	var resp api.UserResponse
	if err := m.network.Request(ctx, api.GetUser{UserID: userID}, &resp); err != nil {
		log.WithError(err).Error("failed to fetch user")
		return nil, remoteError(opGetUser, err)
	}

	fetched := resp.ToUser()
	m.cacheUser(ctx, fetched)
	return &fetched, nil
}

// GetUsers lists the users whose nickname equals nicknameMatches, up to the
// page limit, and caches every returned record
func (m *UserManager) GetUsers(ctx context.Context, nicknameMatches string) (users []types.User, err error) {
	start := time.Now()
	defer func() { m.metrics.RecordOperation(ctx, opGetUsers, start, err) }()

	if err := m.ready(); err != nil {
		return nil, err
	}
	if nicknameMatches == "" {
		return nil, ErrEmptyFilter
	}

	log := m.opLogger(ctx, opGetUsers).WithFields(logrus.Fields{
		"nickname": nicknameMatches,
		"limit":    m.pageLimit,
	})

	var resp api.UsersResponse
	if err := m.network.Request(ctx, api.ListUsers{Nickname: nicknameMatches, Limit: m.pageLimit}, &resp); err != nil {
		log.WithError(err).Error("failed to list users")
		return nil, remoteError(opGetUsers, err)
	}

	users = resp.ToUsers()
	for _, u := range users {
		m.cacheUser(ctx, u)
	}

	log.WithField("count", len(users)).Info("users listed")
	return users, nil
}
