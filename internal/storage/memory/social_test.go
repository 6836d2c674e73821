package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphMemoryStorage_FollowUnfollow(t *testing.T) {
	storage := NewGraphMemoryStorage()
	ctx := context.Background()
	require.NoError(t, storage.CreateUser(ctx, "alice"))
	require.NoError(t, storage.CreateUser(ctx, "bob"))

	t.Run("Follow creates a directed edge", func(t *testing.T) {
		require.NoError(t, storage.Follow(ctx, "alice", "bob"))

		following, err := storage.IsFollowing(ctx, "alice", "bob")
		require.NoError(t, err)
		assert.True(t, following)

		// ребро направленное
		reverse, err := storage.IsFollowing(ctx, "bob", "alice")
		require.NoError(t, err)
		assert.False(t, reverse)
	})

	t.Run("Repeated follow does not duplicate the edge", func(t *testing.T) {
		require.NoError(t, storage.Follow(ctx, "alice", "bob"))

		following, err := storage.Following(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, []string{"bob"}, following)
	})

	t.Run("Unfollow removes the edge and is idempotent", func(t *testing.T) {
		require.NoError(t, storage.Unfollow(ctx, "alice", "bob"))
		require.NoError(t, storage.Unfollow(ctx, "alice", "bob"))

		following, err := storage.IsFollowing(ctx, "alice", "bob")
		require.NoError(t, err)
		assert.False(t, following)
	})
}

func TestGraphMemoryStorage_FollowersFollowing(t *testing.T) {
	storage := NewGraphMemoryStorage()
	ctx := context.Background()
	for _, username := range []string{"alice", "bob", "carol"} {
		require.NoError(t, storage.CreateUser(ctx, username))
	}
	require.NoError(t, storage.Follow(ctx, "bob", "alice"))
	require.NoError(t, storage.Follow(ctx, "carol", "alice"))
	require.NoError(t, storage.Follow(ctx, "alice", "bob"))

	followers, err := storage.Followers(ctx, "alice")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"bob", "carol"}, followers)

	following, err := storage.Following(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, following)
}

func TestGraphMemoryStorage_DeleteUser(t *testing.T) {
	storage := NewGraphMemoryStorage()
	ctx := context.Background()
	for _, username := range []string{"alice", "bob", "carol"} {
		require.NoError(t, storage.CreateUser(ctx, username))
	}
	require.NoError(t, storage.Follow(ctx, "alice", "bob"))
	require.NoError(t, storage.Follow(ctx, "carol", "alice"))

	require.NoError(t, storage.DeleteUser(ctx, "alice"))

	// исходящие и входящие ребра удалены вместе с узлом
	following, err := storage.Following(ctx, "carol")
	require.NoError(t, err)
	assert.Empty(t, following)

	followers, err := storage.Followers(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, followers)
}

func TestGraphMemoryStorage_Recommendations(t *testing.T) {
	storage := NewGraphMemoryStorage()
	ctx := context.Background()
	for _, username := range []string{"alice", "bob", "carol", "dave", "eve"} {
		require.NoError(t, storage.CreateUser(ctx, username))
	}

	// alice и dave подписаны на bob и carol, eve - только на bob
	require.NoError(t, storage.Follow(ctx, "alice", "bob"))
	require.NoError(t, storage.Follow(ctx, "alice", "carol"))
	require.NoError(t, storage.Follow(ctx, "dave", "bob"))
	require.NoError(t, storage.Follow(ctx, "dave", "carol"))
	require.NoError(t, storage.Follow(ctx, "eve", "bob"))

	t.Run("Ranked by number of shared followees", func(t *testing.T) {
		recs, err := storage.Recommendations(ctx, "alice", 5)
		require.NoError(t, err)
		assert.Equal(t, []string{"dave", "eve"}, recs)
	})

	t.Run("Limit truncates the list", func(t *testing.T) {
		recs, err := storage.Recommendations(ctx, "alice", 1)
		require.NoError(t, err)
		assert.Equal(t, []string{"dave"}, recs)
	})

	t.Run("Existing followees and followers are excluded", func(t *testing.T) {
		// eve уже подписана на alice - не должна рекомендоваться
		require.NoError(t, storage.Follow(ctx, "eve", "alice"))

		recs, err := storage.Recommendations(ctx, "alice", 5)
		require.NoError(t, err)
		assert.Equal(t, []string{"dave"}, recs)
	})

	t.Run("No followees means no candidates", func(t *testing.T) {
		recs, err := storage.Recommendations(ctx, "bob", 5)
		require.NoError(t, err)
		assert.Empty(t, recs)
	})
}
