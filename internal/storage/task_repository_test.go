package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestTaskRepositoryCreateDefaults(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	task, err := store.Tasks.Create(ctx, "Ship release", "cut the tag", "high", "pending", nil)
	require.NoError(t, err)
	assert.NotZero(t, task.ID)
	assert.Equal(t, "pending", task.Status)
	assert.Nil(t, task.AssignedTo)

	fetched, err := store.Tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.Title, fetched.Title)
	assert.Equal(t, "pending", fetched.Status)
}

func TestTaskRepositoryCreateReturnsOwnID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Back-to-back creates share a timestamp; each must still get its
	// own row back.
	titles := []string{"first", "second", "third"}
	var lastID int64
	for _, title := range titles {
		task, err := store.Tasks.Create(ctx, title, "", "low", "pending", nil)
		require.NoError(t, err)
		assert.Greater(t, task.ID, lastID)
		lastID = task.ID

		fetched, err := store.Tasks.GetByID(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, title, fetched.Title)
	}
}

func TestTaskRepositoryClearAssignee(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	task, err := store.Tasks.Create(ctx, "handoff", "", "medium", "pending", strPtr("alice"))
	require.NoError(t, err)

	// A nil AssignedTo without the clear flag leaves the assignee alone
	updated, err := store.Tasks.Update(ctx, task.ID, TaskUpdate{Status: strPtr("in_progress")})
	require.NoError(t, err)
	require.NotNil(t, updated.AssignedTo)
	assert.Equal(t, "alice", *updated.AssignedTo)

	// ClearAssignedTo sets the column to NULL
	updated, err = store.Tasks.Update(ctx, task.ID, TaskUpdate{ClearAssignedTo: true})
	require.NoError(t, err)
	assert.Nil(t, updated.AssignedTo)
}

func TestTaskRepositoryListFilters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Tasks.Create(ctx, "a", "", "low", "pending", strPtr("alice"))
	require.NoError(t, err)
	second, err := store.Tasks.Create(ctx, "b", "", "high", "pending", strPtr("bob"))
	require.NoError(t, err)
	_, err = store.Tasks.Create(ctx, "c", "", "high", "pending", strPtr("alice"))
	require.NoError(t, err)

	_, err = store.Tasks.Update(ctx, second.ID, TaskUpdate{Status: strPtr("done")})
	require.NoError(t, err)

	all, err := store.Tasks.List(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	pending, err := store.Tasks.List(ctx, "pending", "")
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	aliceDone, err := store.Tasks.List(ctx, "done", "alice")
	require.NoError(t, err)
	assert.Empty(t, aliceDone)

	bobDone, err := store.Tasks.List(ctx, "done", "bob")
	require.NoError(t, err)
	require.Len(t, bobDone, 1)
	assert.Equal(t, second.ID, bobDone[0].ID)
}

func TestTaskRepositoryPartialUpdate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	task, err := store.Tasks.Create(ctx, "original", "desc", "medium", "pending", nil)
	require.NoError(t, err)

	updated, err := store.Tasks.Update(ctx, task.ID, TaskUpdate{
		Status:     strPtr("in_progress"),
		AssignedTo: strPtr("alice"),
	})
	require.NoError(t, err)
	assert.Equal(t, "original", updated.Title)
	assert.Equal(t, "desc", updated.Description)
	assert.Equal(t, "in_progress", updated.Status)
	require.NotNil(t, updated.AssignedTo)
	assert.Equal(t, "alice", *updated.AssignedTo)
	assert.False(t, updated.UpdatedAt.Before(task.UpdatedAt))

	_, err = store.Tasks.Update(ctx, 9999, TaskUpdate{Status: strPtr("done")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTaskRepositoryDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	task, err := store.Tasks.Create(ctx, "to delete", "", "low", "pending", nil)
	require.NoError(t, err)

	require.NoError(t, store.Tasks.Delete(ctx, task.ID))
	assert.ErrorIs(t, store.Tasks.Delete(ctx, task.ID), ErrNotFound)
}

func TestTaskRepositorySearch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Tasks.Create(ctx, "Fix Login Bug", "auth flow broken", "high", "pending", nil)
	require.NoError(t, err)
	_, err = store.Tasks.Create(ctx, "Write docs", "document the login endpoint", "low", "pending", nil)
	require.NoError(t, err)
	_, err = store.Tasks.Create(ctx, "Unrelated", "nothing here", "low", "pending", nil)
	require.NoError(t, err)

	matches, err := store.Tasks.Search(ctx, "LOGIN")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "Fix Login Bug", matches[0].Title)
	assert.Equal(t, "Write docs", matches[1].Title)

	none, err := store.Tasks.Search(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestTaskRepositoryCountByField(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Tasks.Create(ctx, "a", "", "high", "pending", nil)
	require.NoError(t, err)
	_, err = store.Tasks.Create(ctx, "b", "", "high", "pending", nil)
	require.NoError(t, err)
	_, err = store.Tasks.Create(ctx, "c", "", "low", "pending", nil)
	require.NoError(t, err)

	byPriority, err := store.Tasks.CountByField(ctx, "priority")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"high": 2, "low": 1}, byPriority)

	byStatus, err := store.Tasks.CountByField(ctx, "status")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"pending": 3}, byStatus)

	_, err = store.Tasks.CountByField(ctx, "title")
	assert.Error(t, err)
}
