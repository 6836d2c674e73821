package memory

import (
	"context"
	"os"
	"testing"

	"github.com/VitaminP8/picstream/internal/auth"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "test_secret_key_for_jwt")
	os.Exit(m.Run())
}

func userContext(username string) context.Context {
	return auth.WithUsername(context.Background(), username)
}

func TestUserMemoryStorage_RegisterUser(t *testing.T) {
	storage := NewUserMemoryStorage()
	ctx := context.Background()

	t.Run("Successful registration", func(t *testing.T) {
		err := storage.RegisterUser(ctx, "alice", "password123")
		require.NoError(t, err)

		profile, err := storage.GetProfile(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "alice", profile.Username)
		assert.NotEmpty(t, profile.ID)
	})

	t.Run("Error when username already taken", func(t *testing.T) {
		err := storage.RegisterUser(ctx, "alice", "other")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already taken")
	})

	t.Run("Password is stored hashed", func(t *testing.T) {
		require.NoError(t, storage.RegisterUser(ctx, "bob", "secret"))
		assert.NotEqual(t, "secret", storage.passwords["bob"])
	})
}

func TestUserMemoryStorage_LoginUser(t *testing.T) {
	storage := NewUserMemoryStorage()
	ctx := context.Background()
	require.NoError(t, storage.RegisterUser(ctx, "alice", "password123"))

	t.Run("Successful login returns signed JWT with username claim", func(t *testing.T) {
		tokenString, err := storage.LoginUser(ctx, "alice", "password123")
		require.NoError(t, err)
		require.NotEmpty(t, tokenString)

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			return []byte(os.Getenv("JWT_SECRET")), nil
		})
		require.NoError(t, err)
		claims, ok := token.Claims.(jwt.MapClaims)
		require.True(t, ok)
		assert.Equal(t, "alice", claims["username"])
	})

	t.Run("Error with wrong password", func(t *testing.T) {
		_, err := storage.LoginUser(ctx, "alice", "wrong")
		assert.Error(t, err)
	})

	t.Run("Error when user does not exist", func(t *testing.T) {
		_, err := storage.LoginUser(ctx, "nobody", "password123")
		assert.Error(t, err)
	})
}

func TestUserMemoryStorage_UpdateProfile(t *testing.T) {
	storage := NewUserMemoryStorage()
	require.NoError(t, storage.RegisterUser(context.Background(), "alice", "pw"))

	t.Run("Updates only provided fields", func(t *testing.T) {
		photo := "/uploads/avatar.png"
		profile, err := storage.UpdateProfile(userContext("alice"), &photo, nil)
		require.NoError(t, err)
		require.NotNil(t, profile.ProfilePhoto)
		assert.Equal(t, photo, *profile.ProfilePhoto)
		assert.Nil(t, profile.Description)

		description := "hello"
		profile, err = storage.UpdateProfile(userContext("alice"), nil, &description)
		require.NoError(t, err)
		assert.Equal(t, photo, *profile.ProfilePhoto)
		assert.Equal(t, description, *profile.Description)
	})

	t.Run("No fields provided returns profile unchanged", func(t *testing.T) {
		before, err := storage.GetProfile(context.Background(), "alice")
		require.NoError(t, err)

		profile, err := storage.UpdateProfile(userContext("alice"), nil, nil)
		require.NoError(t, err)
		assert.Equal(t, before, profile)
	})

	t.Run("Error when not authenticated", func(t *testing.T) {
		_, err := storage.UpdateProfile(context.Background(), nil, nil)
		assert.Error(t, err)
	})

	t.Run("Error when profile does not exist", func(t *testing.T) {
		_, err := storage.UpdateProfile(userContext("nobody"), nil, nil)
		assert.Error(t, err)
	})
}

func TestUserMemoryStorage_DeleteProfile(t *testing.T) {
	storage := NewUserMemoryStorage()
	require.NoError(t, storage.RegisterUser(context.Background(), "alice", "pw"))

	t.Run("Successful deletion", func(t *testing.T) {
		err := storage.DeleteProfile(userContext("alice"))
		require.NoError(t, err)

		_, err = storage.GetProfile(context.Background(), "alice")
		assert.Error(t, err)
	})

	t.Run("Error when profile already deleted", func(t *testing.T) {
		err := storage.DeleteProfile(userContext("alice"))
		assert.Error(t, err)
	})
}

func TestUserMemoryStorage_SearchUsers(t *testing.T) {
	storage := NewUserMemoryStorage()
	ctx := context.Background()
	require.NoError(t, storage.RegisterUser(ctx, "alice", "pw"))
	require.NoError(t, storage.RegisterUser(ctx, "bob", "pw"))

	t.Run("Exact match only", func(t *testing.T) {
		profiles, err := storage.SearchUsers(userContext("alice"), "bob")
		require.NoError(t, err)
		require.Len(t, profiles, 1)
		assert.Equal(t, "bob", profiles[0].Username)

		profiles, err = storage.SearchUsers(userContext("alice"), "bo")
		require.NoError(t, err)
		assert.Empty(t, profiles)
	})

	t.Run("Caller is excluded", func(t *testing.T) {
		profiles, err := storage.SearchUsers(userContext("alice"), "alice")
		require.NoError(t, err)
		assert.Empty(t, profiles)
	})
}

func TestUserMemoryStorage_ListUsernames(t *testing.T) {
	storage := NewUserMemoryStorage()
	ctx := context.Background()
	for _, username := range []string{"alice", "bob", "carol"} {
		require.NoError(t, storage.RegisterUser(ctx, username, "pw"))
	}

	usernames, err := storage.ListUsernames(ctx, "alice")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"bob", "carol"}, usernames)
}

func TestUserMemoryStorage_GetProfilesByUsernames(t *testing.T) {
	storage := NewUserMemoryStorage()
	ctx := context.Background()
	require.NoError(t, storage.RegisterUser(ctx, "alice", "pw"))
	require.NoError(t, storage.RegisterUser(ctx, "bob", "pw"))

	profiles, err := storage.GetProfilesByUsernames(ctx, []string{"alice", "nobody", "bob"})
	require.NoError(t, err)
	require.Len(t, profiles, 2)
}
