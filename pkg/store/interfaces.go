package store

import (
	"context"

	"github.com/BBQAnChang/SBHomework/pkg/types"
)

// UserStoreInterface defines the local user cache operations
// Implementations must be safe for concurrent use without caller-side locking
type UserStoreInterface interface {
	// Upsert inserts the user or replaces all attributes of the existing record
	// Returns ErrEmptyUserID when the user has no identity
	Upsert(ctx context.Context, user types.User) error

	// GetAll returns a snapshot of every cached user, in no particular order
	GetAll(ctx context.Context) ([]types.User, error)

	// GetByID returns the cached user or nil if it is not cached
	GetByID(ctx context.Context, userID string) (*types.User, error)

	// GetByNickname returns the cached users whose nickname matches exactly (case-sensitive)
	// Returns an empty slice when nothing matches
	GetByNickname(ctx context.Context, nickname string) ([]types.User, error)

	// Clear removes every cached user
	Clear(ctx context.Context) error
}

// MetaStoreInterface defines operations for persisted SDK settings
type MetaStoreInterface interface {
	// GetApplicationID returns the application ID the cache was populated under
	// Returns an empty string if none was stored yet
	GetApplicationID(ctx context.Context) (string, error)

	// SetApplicationID stores the application ID the cache belongs to
	SetApplicationID(ctx context.Context, applicationID string) error

	// Get returns the setting stored under key or an error wrapping cache.ErrKeyNotFound
	Get(ctx context.Context, key string) (string, error)

	Set(ctx context.Context, key, value string) error

	Delete(ctx context.Context, key string) error
}
