package inmemory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BBQAnChang/SBHomework/pkg/cache/types"
)

func setupCache(t *testing.T) *Cache {
	t.Helper()
	c, err := NewCache(&Config{
		DefaultExpiration: 300,
		CleanupInterval:   600,
	})
	require.NoError(t, err)
	return c
}

func TestNewCache_NilConfig(t *testing.T) {
	c, err := NewCache(nil)
	assert.Error(t, err)
	assert.Nil(t, c)
}

func TestCache_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	c := setupCache(t)

	_, err := c.Get(ctx, "missing")
	assert.True(t, errors.Is(err, types.ErrKeyNotFound))

	require.NoError(t, c.Set(ctx, "user:1", "value", types.NoExpiration))
	val, err := c.Get(ctx, "user:1")
	require.NoError(t, err)
	assert.Equal(t, "value", val)

	require.NoError(t, c.Delete(ctx, "user:1"))
	_, err = c.Get(ctx, "user:1")
	assert.ErrorIs(t, err, types.ErrKeyNotFound)

	// deleting a missing key is not an error
	assert.NoError(t, c.Delete(ctx, "user:1"))
}

func TestCache_SetWithExpiration(t *testing.T) {
	ctx := context.Background()
	c := setupCache(t)

	require.NoError(t, c.Set(ctx, "short", "lived", 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	_, err := c.Get(ctx, "short")
	assert.ErrorIs(t, err, types.ErrKeyNotFound)
}

func TestCache_GetByPattern(t *testing.T) {
	ctx := context.Background()
	c := setupCache(t)

	require.NoError(t, c.Set(ctx, "user:alice", "a", types.NoExpiration))
	require.NoError(t, c.Set(ctx, "user:team/bob", "b", types.NoExpiration))
	require.NoError(t, c.Set(ctx, "meta:application_id", "app", types.NoExpiration))

	tests := []struct {
		name    string
		pattern string
		want    map[string]interface{}
		wantErr bool
	}{
		{
			name:    "prefix pattern matches keys containing slashes",
			pattern: "user:*",
			want: map[string]interface{}{
				"user:alice":    "a",
				"user:team/bob": "b",
			},
		},
		{
			name:    "exact key",
			pattern: "meta:application_id",
			want:    map[string]interface{}{"meta:application_id": "app"},
		},
		{
			name:    "single character wildcard",
			pattern: "user:alic?",
			want:    map[string]interface{}{"user:alice": "a"},
		},
		{
			name:    "no match returns empty map",
			pattern: "team:*",
			want:    map[string]interface{}{},
		},
		{
			name:    "malformed pattern",
			pattern: "user:[",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.GetByPattern(ctx, tt.pattern)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCache_DeleteByPattern(t *testing.T) {
	ctx := context.Background()
	c := setupCache(t)

	require.NoError(t, c.Set(ctx, "user:alice", "a", types.NoExpiration))
	require.NoError(t, c.Set(ctx, "user:bob", "b", types.NoExpiration))
	require.NoError(t, c.Set(ctx, "meta:application_id", "app", types.NoExpiration))

	require.NoError(t, c.DeleteByPattern(ctx, "user:*"))

	users, err := c.GetByPattern(ctx, "user:*")
	require.NoError(t, err)
	assert.Empty(t, users)

	val, err := c.Get(ctx, "meta:application_id")
	require.NoError(t, err)
	assert.Equal(t, "app", val)
}
