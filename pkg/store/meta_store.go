package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/BBQAnChang/SBHomework/pkg/cache"
)

const applicationIDKey = "application_id"

// MetaStore handles all metadata-related cache operations with "meta:" prefix
// Metadata holds SDK settings such as the application ID the cache belongs to
type MetaStore struct {
	cache cache.Cache
}

// newMetaStore creates a new MetaStore instance
func newMetaStore(c cache.Cache) *MetaStore {
	return &MetaStore{
		cache: c,
	}
}

// metaKey returns the prefixed cache key for metadata
func (s *MetaStore) metaKey(key string) string {
	return "meta:" + key
}

// GetApplicationID returns the stored application ID
// Returns an empty string if it was never stored
func (s *MetaStore) GetApplicationID(ctx context.Context) (string, error) {
	val, err := s.Get(ctx, applicationIDKey)
	if err != nil {
		if errors.Is(err, cache.ErrKeyNotFound) {
			return "", nil
		}
		return "", err
	}
	return val, nil
}

// SetApplicationID stores the application ID the cache belongs to
func (s *MetaStore) SetApplicationID(ctx context.Context, applicationID string) error {
	return s.Set(ctx, applicationIDKey, applicationID)
}

// Get retrieves a generic metadata value by key
func (s *MetaStore) Get(ctx context.Context, key string) (string, error) {
	metaKey := s.metaKey(key)
	val, err := s.cache.Get(ctx, metaKey)
	if err != nil {
		return "", fmt.Errorf("failed to get meta key %s: %w", key, err)
	}

	str, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("unexpected value type %T for meta key %s", val, key)
	}
	return str, nil
}

// Set stores a generic metadata value by key
func (s *MetaStore) Set(ctx context.Context, key, value string) error {
	metaKey := s.metaKey(key)
	if err := s.cache.Set(ctx, metaKey, value, cache.NoExpiration); err != nil {
		return fmt.Errorf("failed to set meta key %s: %w", key, err)
	}

	return nil
}

// Delete removes a metadata entry
func (s *MetaStore) Delete(ctx context.Context, key string) error {
	metaKey := s.metaKey(key)
	return s.cache.Delete(ctx, metaKey)
}
