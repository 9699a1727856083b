package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/BBQAnChang/SBHomework/pkg/cache"
	"github.com/BBQAnChang/SBHomework/pkg/types"
)

const userKeyPrefix = "user:"

// ErrEmptyUserID is returned when a user without identity is upserted
var ErrEmptyUserID = errors.New("user id must not be empty")

// UserStore handles all user-related cache operations with "user:" prefix
// Each user is a single JSON value that the cache sets atomically, so readers
// never see a partially written record and take no lock. A slow scan never
// holds up an Upsert. mu only orders writers: upserts share it, Clear holds it
// exclusively.
type UserStore struct {
	mu    sync.RWMutex
	cache cache.Cache
}

// newUserStore creates a new UserStore instance
func newUserStore(c cache.Cache) *UserStore {
	return &UserStore{
		cache: c,
	}
}

// userKey returns the prefixed cache key for a user
func (s *UserStore) userKey(userID string) string {
	return userKeyPrefix + userID
}

// Upsert inserts the user if absent, else replaces all of its attributes
func (s *UserStore) Upsert(ctx context.Context, user types.User) error {
	if user.UserID == "" {
		return ErrEmptyUserID
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.cache.Set(ctx, s.userKey(user.UserID), string(data), cache.NoExpiration); err != nil {
		return fmt.Errorf("failed to set user in cache: %w", err)
	}
	return nil
}

// GetByID returns the cached user or nil when it is not cached
func (s *UserStore) GetByID(ctx context.Context, userID string) (*types.User, error) {
	val, err := s.cache.Get(ctx, s.userKey(userID))
	if err != nil {
		if errors.Is(err, cache.ErrKeyNotFound) {
			// User not found, not an error condition
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user from cache: %w", err)
	}

	var user types.User
	if err := unmarshalValue(val, &user, "user"); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetAll returns every cached user, in no particular order
func (s *UserStore) GetAll(ctx context.Context) ([]types.User, error) {
	return s.scan(ctx)
}

// GetByNickname returns the cached users whose nickname equals nickname
func (s *UserStore) GetByNickname(ctx context.Context, nickname string) ([]types.User, error) {
	all, err := s.scan(ctx)
	if err != nil {
		return nil, err
	}

	users := make([]types.User, 0)
	for _, user := range all {
		if user.Nickname == nickname {
			users = append(users, user)
		}
	}
	return users, nil
}

// Clear removes every cached user; other prefixes (settings) are kept
func (s *UserStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.cache.DeleteByPattern(ctx, userKeyPrefix+"*"); err != nil {
		return fmt.Errorf("failed to clear users from cache: %w", err)
	}
	return nil
}

func (s *UserStore) scan(ctx context.Context) ([]types.User, error) {
	results, err := s.cache.GetByPattern(ctx, userKeyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("failed to search users in cache: %w", err)
	}

	users := make([]types.User, 0, len(results))
	for _, value := range results {
		var user types.User
		if err := unmarshalValue(value, &user, "user"); err != nil {
			// Skip invalid entries
			continue
		}
		users = append(users, user)
	}
	return users, nil
}
