package usermanager

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang/mock/gomock"

	"github.com/BBQAnChang/SBHomework/pkg/api"
	"github.com/BBQAnChang/SBHomework/pkg/types"
)

func (s *UserManagerSuite) TestCreateUsers_AllSucceed() {
	ctx := context.Background()
	s.initialize()

	params := []types.UserCreationParams{newParams(1), newParams(2), newParams(3)}
	s.network.EXPECT().
		Request(gomock.Any(), gomock.AssignableToTypeOf(api.CreateUser{}), gomock.Any()).
		DoAndReturn(echoCreate).
		Times(len(params))

	created, err := s.manager.CreateUsers(ctx, params)
	s.Require().NoError(err)
	s.Equal([]types.User{params[0].ToUser(), params[1].ToUser(), params[2].ToUser()}, created)

	cached, err := s.manager.Storage().GetAll(ctx)
	s.Require().NoError(err)
	s.Len(cached, len(params))
}

func (s *UserManagerSuite) TestCreateUsers_OverLimit() {
	s.initialize()

	params := make([]types.UserCreationParams, 0, DefaultMaxCreateCount+1)
	for i := 0; i < DefaultMaxCreateCount+1; i++ {
		params = append(params, newParams(i))
	}

	s.network.EXPECT().
		Request(gomock.Any(), gomock.AssignableToTypeOf(api.CreateUser{}), gomock.Any()).
		DoAndReturn(echoCreate).
		Times(DefaultMaxCreateCount)

	created, err := s.manager.CreateUsers(context.Background(), params)
	s.Require().Error(err)
	s.ErrorIs(err, ErrBulkCreateFailed)
	s.ErrorIs(err, ErrQueueFull)

	var bulkErr *BulkCreateError
	s.Require().ErrorAs(err, &bulkErr)
	s.Require().Len(bulkErr.Failed, 1)
	s.Equal(params[DefaultMaxCreateCount].ToUser(), bulkErr.Failed[0])
	s.Len(bulkErr.Causes, 1)
	s.Len(created, DefaultMaxCreateCount)
}

func (s *UserManagerSuite) TestCreateUsers_PartialFailure() {
	s.initialize()

	params := []types.UserCreationParams{newParams(1), newParams(2), newParams(3)}
	remoteErr := &api.ErrorResponse{Message: "invalid nickname", Code: 400100, Err: true}

	s.network.EXPECT().
		Request(gomock.Any(), gomock.AssignableToTypeOf(api.CreateUser{}), gomock.Any()).
		DoAndReturn(func(ctx context.Context, req api.Request, out interface{}) error {
			if req.(api.CreateUser).Params.UserID == params[1].UserID {
				return remoteErr
			}
			return echoCreate(ctx, req, out)
		}).
		Times(len(params))

	created, err := s.manager.CreateUsers(context.Background(), params)
	s.Equal([]types.User{params[0].ToUser(), params[2].ToUser()}, created)

	var bulkErr *BulkCreateError
	s.Require().ErrorAs(err, &bulkErr)
	s.Equal([]types.User{params[1].ToUser()}, bulkErr.Failed)
	s.ErrorIs(err, ErrRemoteFailure)
	s.True(errors.Is(bulkErr.Causes[0], remoteErr))

	// the failed record never reaches the cache
	cached, err := s.manager.Storage().GetByID(context.Background(), params[1].UserID)
	s.Require().NoError(err)
	s.Nil(cached)
}

func (s *UserManagerSuite) TestCreateUsers_SpacesRequests() {
	s.initialize()

	const delay = 30 * time.Millisecond
	m, err := New(s.network, s.storage, WithBulkCreateDelay(delay), WithQueueInterval(5*time.Millisecond))
	s.Require().NoError(err)
	s.network.EXPECT().SetCredentials(testAppID, testToken)
	s.Require().NoError(m.InitApplication(context.Background(), testAppID, testToken))

	var mu sync.Mutex
	sentAt := make(map[string]time.Time)
	s.network.EXPECT().
		Request(gomock.Any(), gomock.AssignableToTypeOf(api.CreateUser{}), gomock.Any()).
		DoAndReturn(func(ctx context.Context, req api.Request, out interface{}) error {
			mu.Lock()
			sentAt[req.(api.CreateUser).Params.UserID] = time.Now()
			mu.Unlock()
			return echoCreate(ctx, req, out)
		}).
		Times(4)

	params := []types.UserCreationParams{newParams(0), newParams(1), newParams(2), newParams(3)}
	start := time.Now()
	_, err = m.CreateUsers(context.Background(), params)
	s.Require().NoError(err)

	for k, p := range params {
		s.GreaterOrEqual(sentAt[p.UserID].Sub(start), time.Duration(k)*delay, "item %d sent too early", k)
	}
}

func (s *UserManagerSuite) TestCreateUsers_Empty() {
	s.initialize()

	created, err := s.manager.CreateUsers(context.Background(), nil)
	s.NoError(err)
	s.Empty(created)
}

func (s *UserManagerSuite) TestCreateUsers_CancelledBeforeDispatch() {
	s.initialize()

	m, err := New(s.network, s.storage, WithBulkCreateDelay(time.Hour))
	s.Require().NoError(err)
	s.network.EXPECT().SetCredentials(testAppID, testToken)
	s.Require().NoError(m.InitApplication(context.Background(), testAppID, testToken))

	// only the first item is due immediately
	s.network.EXPECT().
		Request(gomock.Any(), gomock.AssignableToTypeOf(api.CreateUser{}), gomock.Any()).
		DoAndReturn(echoCreate).
		Times(1)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	params := []types.UserCreationParams{newParams(0), newParams(1)}
	created, err := m.CreateUsers(ctx, params)
	s.Equal([]types.User{params[0].ToUser()}, created)

	var bulkErr *BulkCreateError
	s.Require().ErrorAs(err, &bulkErr)
	s.Equal([]types.User{params[1].ToUser()}, bulkErr.Failed)
	s.ErrorIs(err, context.DeadlineExceeded)
}
