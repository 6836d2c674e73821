package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostStorageWithUsers(t *testing.T, usernames ...string) (*PostMemoryStorage, *UserMemoryStorage) {
	t.Helper()
	users := NewUserMemoryStorage()
	for _, username := range usernames {
		require.NoError(t, users.RegisterUser(context.Background(), username, "pw"))
	}
	return NewPostMemoryStorage(users), users
}

func TestPostMemoryStorage_CreatePost(t *testing.T) {
	storage, _ := newPostStorageWithUsers(t, "alice")

	t.Run("Successful creation", func(t *testing.T) {
		description := "first"
		post, err := storage.CreatePost(userContext("alice"), "/uploads/1.png", &description)
		require.NoError(t, err)
		assert.NotEmpty(t, post.ID)
		assert.Equal(t, "alice", post.Owner.Username)
		assert.Equal(t, "/uploads/1.png", post.ImagePath)
		assert.NotEmpty(t, post.CreatedAt)
		assert.Empty(t, post.Likes)
		assert.Empty(t, post.Comments)
	})

	t.Run("Error when not authenticated", func(t *testing.T) {
		_, err := storage.CreatePost(context.Background(), "/uploads/2.png", nil)
		assert.Error(t, err)
	})

	t.Run("Error when owner profile does not exist", func(t *testing.T) {
		_, err := storage.CreatePost(userContext("ghost"), "/uploads/3.png", nil)
		assert.Error(t, err)
	})
}

func TestPostMemoryStorage_GetPostsByOwnerIds(t *testing.T) {
	storage, users := newPostStorageWithUsers(t, "alice", "bob")

	first, err := storage.CreatePost(userContext("alice"), "/uploads/1.png", nil)
	require.NoError(t, err)
	_, err = storage.CreatePost(userContext("bob"), "/uploads/2.png", nil)
	require.NoError(t, err)
	second, err := storage.CreatePost(userContext("alice"), "/uploads/3.png", nil)
	require.NoError(t, err)

	aliceProfile, err := users.GetProfile(context.Background(), "alice")
	require.NoError(t, err)

	t.Run("Returns only requested owners newest first", func(t *testing.T) {
		posts, err := storage.GetPostsByOwnerIds(context.Background(), []string{aliceProfile.ID})
		require.NoError(t, err)
		require.Len(t, posts, 2)
		assert.Equal(t, second.ID, posts[0].ID)
		assert.Equal(t, first.ID, posts[1].ID)
	})

	t.Run("Unknown owner yields empty list", func(t *testing.T) {
		posts, err := storage.GetPostsByOwnerIds(context.Background(), []string{"999"})
		require.NoError(t, err)
		assert.Empty(t, posts)
	})
}

func TestPostMemoryStorage_DeletePostById(t *testing.T) {
	storage, _ := newPostStorageWithUsers(t, "alice", "bob")

	post, err := storage.CreatePost(userContext("alice"), "/uploads/1.png", nil)
	require.NoError(t, err)

	t.Run("Error when caller is not the owner", func(t *testing.T) {
		err := storage.DeletePostById(userContext("bob"), post.ID)
		assert.Error(t, err)
	})

	t.Run("Owner deletes successfully", func(t *testing.T) {
		err := storage.DeletePostById(userContext("alice"), post.ID)
		require.NoError(t, err)

		_, err = storage.GetPostById(context.Background(), post.ID)
		assert.Error(t, err)
	})

	t.Run("Error when post does not exist", func(t *testing.T) {
		err := storage.DeletePostById(userContext("alice"), "404")
		assert.Error(t, err)
	})
}

func TestPostMemoryStorage_DeletePostsByOwnerId(t *testing.T) {
	storage, users := newPostStorageWithUsers(t, "alice", "bob")

	_, err := storage.CreatePost(userContext("alice"), "/uploads/1.png", nil)
	require.NoError(t, err)
	kept, err := storage.CreatePost(userContext("bob"), "/uploads/2.png", nil)
	require.NoError(t, err)

	aliceProfile, err := users.GetProfile(context.Background(), "alice")
	require.NoError(t, err)

	require.NoError(t, storage.DeletePostsByOwnerId(context.Background(), aliceProfile.ID))

	posts, err := storage.GetPostsByOwnerIds(context.Background(), []string{aliceProfile.ID})
	require.NoError(t, err)
	assert.Empty(t, posts)

	// чужие посты не затронуты
	_, err = storage.GetPostById(context.Background(), kept.ID)
	assert.NoError(t, err)
}

func TestPostMemoryStorage_LikeUnlike(t *testing.T) {
	storage, _ := newPostStorageWithUsers(t, "alice", "bob")

	post, err := storage.CreatePost(userContext("alice"), "/uploads/1.png", nil)
	require.NoError(t, err)

	t.Run("Like adds username once", func(t *testing.T) {
		liked, err := storage.LikePost(userContext("bob"), post.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"bob"}, liked.Likes)
		assert.Equal(t, 1, liked.LikeCount)
	})

	t.Run("Second like by same user is a conflict", func(t *testing.T) {
		_, err := storage.LikePost(userContext("bob"), post.ID)
		assert.Error(t, err)
	})

	t.Run("Unlike removes and is idempotent", func(t *testing.T) {
		unliked, err := storage.UnlikePost(userContext("bob"), post.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, unliked.LikeCount)

		unliked, err = storage.UnlikePost(userContext("bob"), post.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, unliked.LikeCount)
	})

	t.Run("Error when post does not exist", func(t *testing.T) {
		_, err := storage.LikePost(userContext("bob"), "404")
		assert.Error(t, err)
	})
}

func TestPostMemoryStorage_AddComment(t *testing.T) {
	storage, _ := newPostStorageWithUsers(t, "alice", "bob")

	post, err := storage.CreatePost(userContext("alice"), "/uploads/1.png", nil)
	require.NoError(t, err)

	t.Run("Comments are appended in order", func(t *testing.T) {
		first, err := storage.AddComment(userContext("bob"), post.ID, "first")
		require.NoError(t, err)
		assert.Equal(t, "bob", first.Username)

		_, err = storage.AddComment(userContext("alice"), post.ID, "second")
		require.NoError(t, err)

		saved, err := storage.GetPostById(context.Background(), post.ID)
		require.NoError(t, err)
		require.Len(t, saved.Comments, 2)
		assert.Equal(t, "first", saved.Comments[0].Text)
		assert.Equal(t, "second", saved.Comments[1].Text)
	})

	t.Run("Error when post does not exist", func(t *testing.T) {
		_, err := storage.AddComment(userContext("bob"), "404", "text")
		assert.Error(t, err)
	})
}
