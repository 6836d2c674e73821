package graph

import (
	"context"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/VitaminP8/picstream/internal/auth"
	"github.com/VitaminP8/picstream/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testStores struct {
	users  *mocks.MockUserStorage
	posts  *mocks.MockPostStorage
	graph  *mocks.MockGraphStorage
	tokens *mocks.MockTokenStorage
	subs   *mocks.MockSubscriptionManager
}

func newTestResolver() (*Resolver, *testStores) {
	stores := &testStores{
		users:  mocks.NewMockUserStorage(),
		graph:  mocks.NewMockGraphStorage(),
		tokens: mocks.NewMockTokenStorage(),
		subs:   mocks.NewMockSubscriptionManager(),
	}
	stores.posts = mocks.NewMockPostStorage(stores.users)

	resolver := &Resolver{
		UserStore:           stores.users,
		PostStore:           stores.posts,
		GraphStore:          stores.graph,
		TokenStore:          stores.tokens,
		SubscriptionManager: stores.subs,
	}
	return resolver, stores
}

func createUserContext(username string) context.Context {
	ctx := context.Background()
	return auth.WithUsername(ctx, username)
}

func registerUser(t *testing.T, resolver *Resolver, username string) {
	t.Helper()
	msg, err := resolver.Mutation().Register(context.Background(), username, "password123")
	require.NoError(t, err)
	require.Equal(t, "Registration successful", msg)
}

func TestMutationResolver_Register(t *testing.T) {
	resolver, stores := newTestResolver()

	t.Run("Successful registration creates profile and graph node", func(t *testing.T) {
		msg, err := resolver.Mutation().Register(context.Background(), "alice", "pw1")
		require.NoError(t, err)
		assert.Equal(t, "Registration successful", msg)

		profile, err := stores.users.GetProfile(context.Background(), "alice")
		require.NoError(t, err)
		assert.Equal(t, "alice", profile.Username)
		assert.True(t, stores.graph.HasNode("alice"))
	})

	t.Run("Error when username already taken", func(t *testing.T) {
		// check-then-insert: при последовательных запросах второй получает Conflict
		_, err := resolver.Mutation().Register(context.Background(), "alice", "pw2")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already taken")
	})

	t.Run("Error when username or password missing", func(t *testing.T) {
		_, err := resolver.Mutation().Register(context.Background(), "", "pw")
		assert.Error(t, err)

		_, err = resolver.Mutation().Register(context.Background(), "bob", "")
		assert.Error(t, err)
	})
}

func TestMutationResolver_Login(t *testing.T) {
	resolver, _ := newTestResolver()
	registerUser(t, resolver, "alice")

	t.Run("Successful login returns structured response and sets cookie", func(t *testing.T) {
		w := httptest.NewRecorder()
		ctx := auth.WithResponseWriter(context.Background(), w)

		resp, err := resolver.Mutation().Login(ctx, "alice", "password123")
		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Equal(t, "alice", resp.Username)
		assert.Contains(t, resp.Token, "jwt-token-for-user-")

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, auth.CookieName, cookies[0].Name)
		assert.Equal(t, resp.Token, cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
	})

	t.Run("Error with wrong password", func(t *testing.T) {
		resp, err := resolver.Mutation().Login(context.Background(), "alice", "wrong")
		assert.Error(t, err)
		assert.Nil(t, resp)
	})

	t.Run("Error when user does not exist", func(t *testing.T) {
		resp, err := resolver.Mutation().Login(context.Background(), "nobody", "pw")
		assert.Error(t, err)
		assert.Nil(t, resp)
	})
}

func TestMutationResolver_Logout(t *testing.T) {
	originalSecret := os.Getenv("JWT_SECRET")
	require.NoError(t, os.Setenv("JWT_SECRET", "test_secret_key_for_jwt"))
	defer os.Setenv("JWT_SECRET", originalSecret)

	resolver, _ := newTestResolver()

	tokenString, err := auth.GenerateToken("alice")
	require.NoError(t, err)

	t.Run("No token in request", func(t *testing.T) {
		msg, err := resolver.Mutation().Logout(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "No token found", msg)
	})

	t.Run("Successful logout blacklists token", func(t *testing.T) {
		ctx := auth.WithRawToken(context.Background(), tokenString)

		msg, err := resolver.Mutation().Logout(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Logout successful", msg)
	})

	t.Run("Repeated logout is idempotent", func(t *testing.T) {
		ctx := auth.WithRawToken(context.Background(), tokenString)

		msg, err := resolver.Mutation().Logout(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Already logged out", msg)
	})

	t.Run("Invalid token is soft success and is not blacklisted", func(t *testing.T) {
		ctx := auth.WithRawToken(context.Background(), "not-a-jwt")

		msg, err := resolver.Mutation().Logout(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Invalid token", msg)

		blacklisted, err := resolver.TokenStore.IsBlacklisted(ctx, "not-a-jwt")
		require.NoError(t, err)
		assert.False(t, blacklisted)
	})
}

func TestMutationResolver_FollowUser(t *testing.T) {
	resolver, stores := newTestResolver()
	registerUser(t, resolver, "alice")
	registerUser(t, resolver, "bob")

	t.Run("Error when not authenticated", func(t *testing.T) {
		_, err := resolver.Mutation().FollowUser(context.Background(), "bob")
		assert.Error(t, err)
	})

	t.Run("Self-follow is rejected and creates no edge", func(t *testing.T) {
		_, err := resolver.Mutation().FollowUser(createUserContext("alice"), "alice")
		assert.Error(t, err)
		assert.Equal(t, 0, stores.graph.EdgeCount("alice", "alice"))
	})

	t.Run("Successful follow creates one edge", func(t *testing.T) {
		msg, err := resolver.Mutation().FollowUser(createUserContext("alice"), "bob")
		require.NoError(t, err)
		assert.Equal(t, "Followed successfully", msg)
		assert.Equal(t, 1, stores.graph.EdgeCount("alice", "bob"))
	})

	t.Run("Repeated follow is idempotent", func(t *testing.T) {
		msg, err := resolver.Mutation().FollowUser(createUserContext("alice"), "bob")
		require.NoError(t, err)
		assert.Equal(t, "Already following", msg)
		assert.Equal(t, 1, stores.graph.EdgeCount("alice", "bob"))
	})
}

func TestMutationResolver_UnfollowUser(t *testing.T) {
	resolver, stores := newTestResolver()
	registerUser(t, resolver, "alice")
	registerUser(t, resolver, "bob")

	t.Run("Unfollow without edge is a no-op success", func(t *testing.T) {
		msg, err := resolver.Mutation().UnfollowUser(createUserContext("alice"), "bob")
		require.NoError(t, err)
		assert.Equal(t, "Unfollowed successfully", msg)
		assert.Equal(t, 0, stores.graph.EdgeCount("alice", "bob"))
	})

	t.Run("Unfollow removes existing edge", func(t *testing.T) {
		_, err := resolver.Mutation().FollowUser(createUserContext("alice"), "bob")
		require.NoError(t, err)

		msg, err := resolver.Mutation().UnfollowUser(createUserContext("alice"), "bob")
		require.NoError(t, err)
		assert.Equal(t, "Unfollowed successfully", msg)
		assert.Equal(t, 0, stores.graph.EdgeCount("alice", "bob"))
	})
}

func TestMutationResolver_CreatePost(t *testing.T) {
	resolver, _ := newTestResolver()
	registerUser(t, resolver, "alice")

	t.Run("Successful post creation", func(t *testing.T) {
		description := "hello"
		post, err := resolver.Mutation().CreatePost(createUserContext("alice"), "/uploads/1.png", &description)
		require.NoError(t, err)
		assert.NotEmpty(t, post.ID)
		assert.Equal(t, "alice", post.Owner.Username)
		assert.Equal(t, "/uploads/1.png", post.ImagePath)
		assert.Equal(t, "hello", *post.Description)
		assert.NotEmpty(t, post.CreatedAt)
		assert.Empty(t, post.Likes)
		assert.Zero(t, post.LikeCount)
	})

	t.Run("Error when no authorization", func(t *testing.T) {
		post, err := resolver.Mutation().CreatePost(context.Background(), "/uploads/2.png", nil)
		assert.Error(t, err)
		assert.Nil(t, post)
	})
}

func TestMutationResolver_DeletePost(t *testing.T) {
	resolver, _ := newTestResolver()
	registerUser(t, resolver, "alice")
	registerUser(t, resolver, "bob")

	post, err := resolver.Mutation().CreatePost(createUserContext("alice"), "/uploads/1.png", nil)
	require.NoError(t, err)

	t.Run("Error when caller is not the owner", func(t *testing.T) {
		_, err := resolver.Mutation().DeletePost(createUserContext("bob"), post.ID)
		assert.Error(t, err)
	})

	t.Run("Owner deletes post successfully", func(t *testing.T) {
		msg, err := resolver.Mutation().DeletePost(createUserContext("alice"), post.ID)
		require.NoError(t, err)
		assert.Equal(t, "Post deleted", msg)
	})

	t.Run("Error when post does not exist", func(t *testing.T) {
		_, err := resolver.Mutation().DeletePost(createUserContext("alice"), "non-existent-id")
		assert.Error(t, err)
	})
}

func TestMutationResolver_LikeUnlikePost(t *testing.T) {
	resolver, _ := newTestResolver()
	registerUser(t, resolver, "alice")
	registerUser(t, resolver, "bob")

	post, err := resolver.Mutation().CreatePost(createUserContext("alice"), "/uploads/1.png", nil)
	require.NoError(t, err)

	t.Run("Successful like", func(t *testing.T) {
		liked, err := resolver.Mutation().LikePost(createUserContext("bob"), post.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"bob"}, liked.Likes)
		assert.Equal(t, len(liked.Likes), liked.LikeCount)
	})

	t.Run("Second like by the same user is rejected", func(t *testing.T) {
		_, err := resolver.Mutation().LikePost(createUserContext("bob"), post.ID)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already liked")
	})

	t.Run("LikeCount always equals cardinality of likes set", func(t *testing.T) {
		liked, err := resolver.Mutation().LikePost(createUserContext("alice"), post.ID)
		require.NoError(t, err)
		assert.Equal(t, len(liked.Likes), liked.LikeCount)
		assert.Equal(t, 2, liked.LikeCount)
	})

	t.Run("Unlike is idempotent", func(t *testing.T) {
		unliked, err := resolver.Mutation().UnlikePost(createUserContext("bob"), post.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, unliked.LikeCount)

		// повторный unlike отсутствующего лайка - no-op
		unliked, err = resolver.Mutation().UnlikePost(createUserContext("bob"), post.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, unliked.LikeCount)
	})
}

func TestMutationResolver_AddComment(t *testing.T) {
	resolver, _ := newTestResolver()
	registerUser(t, resolver, "alice")
	registerUser(t, resolver, "bob")

	post, err := resolver.Mutation().CreatePost(createUserContext("alice"), "/uploads/1.png", nil)
	require.NoError(t, err)

	t.Run("Successfully add comment", func(t *testing.T) {
		comment, err := resolver.Mutation().AddComment(createUserContext("bob"), post.ID, "nice shot")
		require.NoError(t, err)
		assert.Equal(t, "bob", comment.Username)
		assert.Equal(t, "nice shot", comment.Text)
		assert.NotEmpty(t, comment.CreatedAt)

		saved, err := resolver.PostStore.GetPostById(createUserContext("bob"), post.ID)
		require.NoError(t, err)
		require.Len(t, saved.Comments, 1)
		assert.Equal(t, "nice shot", saved.Comments[0].Text)
	})

	t.Run("Error when comment text is empty", func(t *testing.T) {
		_, err := resolver.Mutation().AddComment(createUserContext("bob"), post.ID, "")
		assert.Error(t, err)
	})

	t.Run("Error when no authorization", func(t *testing.T) {
		_, err := resolver.Mutation().AddComment(context.Background(), post.ID, "text")
		assert.Error(t, err)
	})
}

func TestMutationResolver_DeleteProfile(t *testing.T) {
	resolver, stores := newTestResolver()
	registerUser(t, resolver, "alice")
	registerUser(t, resolver, "bob")

	aliceCtx := createUserContext("alice")
	_, err := resolver.Mutation().CreatePost(aliceCtx, "/uploads/1.png", nil)
	require.NoError(t, err)
	_, err = resolver.Mutation().FollowUser(createUserContext("bob"), "alice")
	require.NoError(t, err)

	aliceProfile, err := stores.users.GetProfile(aliceCtx, "alice")
	require.NoError(t, err)

	t.Run("Deletion cascades across both stores and clears cookie", func(t *testing.T) {
		w := httptest.NewRecorder()
		ctx := auth.WithResponseWriter(aliceCtx, w)

		msg, err := resolver.Mutation().DeleteProfile(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Profile deleted", msg)

		// посты удалены
		posts, err := stores.posts.GetPostsByOwnerIds(ctx, []string{aliceProfile.ID})
		require.NoError(t, err)
		assert.Empty(t, posts)

		// профиль удален
		_, err = stores.users.GetProfile(ctx, "alice")
		assert.Error(t, err)

		// узел графа удален вместе с входящими ребрами
		assert.False(t, stores.graph.HasNode("alice"))
		assert.Equal(t, 0, stores.graph.EdgeCount("bob", "alice"))

		// кука сброшена
		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, auth.CookieName, cookies[0].Name)
		assert.Empty(t, cookies[0].Value)
		assert.Negative(t, cookies[0].MaxAge)
	})

	t.Run("Old token is not blacklisted by deletion", func(t *testing.T) {
		// удаление профиля намеренно не отзывает токен: подпись остается валидной,
		// но операции за ним падают на отсутствующем профиле
		blacklisted, err := stores.tokens.IsBlacklisted(context.Background(), "any-old-token")
		require.NoError(t, err)
		assert.False(t, blacklisted)

		_, err = resolver.Query().GetMyPosts(aliceCtx)
		assert.Error(t, err)
	})
}

func TestQueryResolver_GetPostsForFollowers(t *testing.T) {
	resolver, _ := newTestResolver()
	registerUser(t, resolver, "alice")
	registerUser(t, resolver, "bob")

	description := "hello"
	post, err := resolver.Mutation().CreatePost(createUserContext("alice"), "/uploads/1.png", &description)
	require.NoError(t, err)

	bobCtx := createUserContext("bob")

	t.Run("Feed is empty before following", func(t *testing.T) {
		feed, err := resolver.Query().GetPostsForFollowers(bobCtx)
		require.NoError(t, err)
		assert.Empty(t, feed)
	})

	t.Run("Feed contains followed user's posts after follow", func(t *testing.T) {
		_, err := resolver.Mutation().FollowUser(bobCtx, "alice")
		require.NoError(t, err)

		feed, err := resolver.Query().GetPostsForFollowers(bobCtx)
		require.NoError(t, err)
		require.Len(t, feed, 1)
		assert.Equal(t, post.ID, feed[0].ID)
		assert.Equal(t, "hello", *feed[0].Description)
	})

	t.Run("Feed never contains caller's own posts", func(t *testing.T) {
		_, err := resolver.Mutation().CreatePost(bobCtx, "/uploads/2.png", nil)
		require.NoError(t, err)

		feed, err := resolver.Query().GetPostsForFollowers(bobCtx)
		require.NoError(t, err)
		for _, p := range feed {
			assert.NotEqual(t, "bob", p.Owner.Username)
		}
	})

	t.Run("Feed is sorted newest first", func(t *testing.T) {
		second, err := resolver.Mutation().CreatePost(createUserContext("alice"), "/uploads/3.png", nil)
		require.NoError(t, err)

		feed, err := resolver.Query().GetPostsForFollowers(bobCtx)
		require.NoError(t, err)
		require.Len(t, feed, 2)
		assert.Equal(t, second.ID, feed[0].ID)
		assert.Equal(t, post.ID, feed[1].ID)
	})

	t.Run("Error when not authenticated", func(t *testing.T) {
		_, err := resolver.Query().GetPostsForFollowers(context.Background())
		assert.Error(t, err)
	})
}

func TestQueryResolver_GetUserProfile(t *testing.T) {
	resolver, _ := newTestResolver()
	registerUser(t, resolver, "alice")

	t.Run("Explicit username", func(t *testing.T) {
		username := "alice"
		profile, err := resolver.Query().GetUserProfile(context.Background(), &username)
		require.NoError(t, err)
		assert.Equal(t, "alice", profile.Username)
	})

	t.Run("Falls back to caller's own username", func(t *testing.T) {
		profile, err := resolver.Query().GetUserProfile(createUserContext("alice"), nil)
		require.NoError(t, err)
		assert.Equal(t, "alice", profile.Username)
	})

	t.Run("Error when neither argument nor identity", func(t *testing.T) {
		_, err := resolver.Query().GetUserProfile(context.Background(), nil)
		assert.Error(t, err)
	})

	t.Run("Error when profile does not exist", func(t *testing.T) {
		username := "nobody"
		_, err := resolver.Query().GetUserProfile(context.Background(), &username)
		assert.Error(t, err)
	})
}

func TestQueryResolver_FollowersAndFollowing(t *testing.T) {
	resolver, _ := newTestResolver()
	registerUser(t, resolver, "alice")
	registerUser(t, resolver, "bob")
	registerUser(t, resolver, "carol")

	_, err := resolver.Mutation().FollowUser(createUserContext("bob"), "alice")
	require.NoError(t, err)
	_, err = resolver.Mutation().FollowUser(createUserContext("carol"), "alice")
	require.NoError(t, err)
	_, err = resolver.Mutation().FollowUser(createUserContext("alice"), "bob")
	require.NoError(t, err)

	t.Run("Followers of explicit username", func(t *testing.T) {
		username := "alice"
		followers, err := resolver.Query().GetFollowers(context.Background(), &username)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"bob", "carol"}, followers)
	})

	t.Run("Following falls back to caller", func(t *testing.T) {
		following, err := resolver.Query().GetFollowing(createUserContext("alice"), nil)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"bob"}, following)
	})
}

func TestQueryResolver_GetRecommendations(t *testing.T) {
	resolver, _ := newTestResolver()
	for _, username := range []string{"alice", "bob", "carol", "dave", "eve"} {
		registerUser(t, resolver, username)
	}

	t.Run("Co-followers ranked by number of shared followees", func(t *testing.T) {
		// alice -> bob, carol; dave -> bob, carol; eve -> bob
		for follower, targets := range map[string][]string{
			"alice": {"bob", "carol"},
			"dave":  {"bob", "carol"},
			"eve":   {"bob"},
		} {
			for _, target := range targets {
				_, err := resolver.Mutation().FollowUser(createUserContext(follower), target)
				require.NoError(t, err)
			}
		}

		profiles, err := resolver.Query().GetRecommendations(createUserContext("alice"))
		require.NoError(t, err)
		require.Len(t, profiles, 2)

		usernames := []string{profiles[0].Username, profiles[1].Username}
		assert.ElementsMatch(t, []string{"dave", "eve"}, usernames)
		// у dave две общие подписки, у eve - одна
		assert.Equal(t, "dave", profiles[0].Username)
	})

	t.Run("Fallback to random sample when fewer than two candidates", func(t *testing.T) {
		profiles, err := resolver.Query().GetRecommendations(createUserContext("carol"))
		require.NoError(t, err)
		assert.LessOrEqual(t, len(profiles), 5)
		assert.NotEmpty(t, profiles)
		for _, profile := range profiles {
			assert.NotEqual(t, "carol", profile.Username)
		}
	})

	t.Run("Error when not authenticated", func(t *testing.T) {
		_, err := resolver.Query().GetRecommendations(context.Background())
		assert.Error(t, err)
	})
}

func TestQueryResolver_SearchUser(t *testing.T) {
	resolver, _ := newTestResolver()
	registerUser(t, resolver, "alice")
	registerUser(t, resolver, "bob")

	t.Run("Exact match", func(t *testing.T) {
		profiles, err := resolver.Query().SearchUser(createUserContext("alice"), "bob")
		require.NoError(t, err)
		require.Len(t, profiles, 1)
		assert.Equal(t, "bob", profiles[0].Username)
	})

	t.Run("Caller is excluded from results", func(t *testing.T) {
		profiles, err := resolver.Query().SearchUser(createUserContext("alice"), "alice")
		require.NoError(t, err)
		assert.Empty(t, profiles)
	})

	t.Run("No match returns empty list", func(t *testing.T) {
		profiles, err := resolver.Query().SearchUser(createUserContext("alice"), "nobody")
		require.NoError(t, err)
		assert.Empty(t, profiles)
	})
}

func TestSubscriptionResolver_CommentAdded(t *testing.T) {
	resolver, _ := newTestResolver()
	registerUser(t, resolver, "alice")
	registerUser(t, resolver, "bob")

	post, err := resolver.Mutation().CreatePost(createUserContext("alice"), "/uploads/1.png", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	t.Run("Subscriber receives published comment", func(t *testing.T) {
		commentChan, err := resolver.Subscription().CommentAdded(ctx, post.ID)
		require.NoError(t, err)
		require.NotNil(t, commentChan)

		comment, err := resolver.Mutation().AddComment(createUserContext("bob"), post.ID, "great")
		require.NoError(t, err)

		select {
		case received := <-commentChan:
			assert.Equal(t, comment.Text, received.Text)
			assert.Equal(t, "bob", received.Username)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for comment")
		}
	})
}
