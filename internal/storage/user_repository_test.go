package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepositoryCreateAndList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice, err := store.Users.Create(ctx, "alice", "admin", JSONValue(`{"team":"core"}`))
	require.NoError(t, err)
	assert.NotZero(t, alice.ID)
	assert.Equal(t, "alice", alice.Username)
	assert.Equal(t, "admin", alice.Role)

	_, err = store.Users.Create(ctx, "bob", "user", nil)
	require.NoError(t, err)

	users, err := store.Users.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)
}

func TestUserRepositoryDuplicateUsername(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Users.Create(ctx, "alice", "admin", nil)
	require.NoError(t, err)

	_, err = store.Users.Create(ctx, "alice", "user", nil)
	assert.ErrorIs(t, err, ErrAlreadyExists)

	count, err := store.Users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestUserRepositoryDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Users.Create(ctx, "alice", "admin", nil)
	require.NoError(t, err)

	require.NoError(t, store.Users.Delete(ctx, "alice"))

	err = store.Users.Delete(ctx, "alice")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Users.GetByUsername(ctx, "alice")
	assert.ErrorIs(t, err, ErrNotFound)
}
