package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BBQAnChang/SBHomework/pkg/types"
)

func TestNew(t *testing.T) {
	c := cacheDrivers["inmemory"](t)

	store := New(c)

	// Verify all sub-stores are initialized
	assert.NotNil(t, store)
	assert.NotNil(t, store.User)
	assert.NotNil(t, store.Meta)
}

func TestStore_InterfaceCompliance(t *testing.T) {
	store := New(cacheDrivers["inmemory"](t))

	var _ UserStoreInterface = store.User
	var _ MetaStoreInterface = store.Meta
}

func TestStore_ClearKeepsSettings(t *testing.T) {
	forEachDriver(t, func(t *testing.T, newCache cacheFactory) {
		store := New(newCache(t))
		ctx := testContext(t)

		require.NoError(t, store.Meta.SetApplicationID(ctx, "app-a"))
		require.NoError(t, store.User.Upsert(ctx, types.User{UserID: "u1", Nickname: "one"}))

		require.NoError(t, store.User.Clear(ctx))

		users, err := store.User.GetAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, users)

		appID, err := store.Meta.GetApplicationID(ctx)
		require.NoError(t, err)
		assert.Equal(t, "app-a", appID)
	})
}

func TestStore_KeyNamespacing(t *testing.T) {
	forEachDriver(t, func(t *testing.T, newCache cacheFactory) {
		store := New(newCache(t))
		ctx := testContext(t)

		// a user whose id equals a settings key must not collide with it
		require.NoError(t, store.Meta.SetApplicationID(ctx, "app-a"))
		require.NoError(t, store.User.Upsert(ctx, types.User{UserID: applicationIDKey, Nickname: "nick"}))

		appID, err := store.Meta.GetApplicationID(ctx)
		require.NoError(t, err)
		assert.Equal(t, "app-a", appID)

		user, err := store.User.GetByID(ctx, applicationIDKey)
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "nick", user.Nickname)
	})
}
