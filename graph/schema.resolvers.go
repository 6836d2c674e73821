package graph

// This file will be automatically regenerated based on the schema, any resolver implementations
// will be copied through when generating and any unknown code will be moved to the end.
// Code generated by github.com/99designs/gqlgen version v0.17.70

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/VitaminP8/picstream/graph/generated"
	"github.com/VitaminP8/picstream/graph/model"
	"github.com/VitaminP8/picstream/internal/apperrors"
	"github.com/VitaminP8/picstream/internal/auth"
)

// recommendationLimit - максимальный размер списка рекомендаций
const recommendationLimit = 5

// Register is the resolver for the register field.
func (r *mutationResolver) Register(ctx context.Context, username string, password string) (string, error) {
	if username == "" || password == "" {
		return "", apperrors.NewValidation("username and password are required")
	}

	if err := r.UserStore.RegisterUser(ctx, username, password); err != nil {
		return "", err
	}

	// второй шаг: узел в графовой базе. Отката первого шага при ошибке нет
	if err := r.GraphStore.CreateUser(ctx, username); err != nil {
		return "", fmt.Errorf("failed to create user node: %w", err)
	}

	return "Registration successful", nil
}

// Login is the resolver for the login field.
func (r *mutationResolver) Login(ctx context.Context, username string, password string) (*model.LoginResponse, error) {
	tokenString, err := r.UserStore.LoginUser(ctx, username, password)
	if err != nil {
		return nil, err
	}

	// кука и токен в теле ответа - для клиентов с собственным хранением
	if w, err := auth.GetResponseWriterFromContext(ctx); err == nil {
		auth.SetAuthCookie(w, tokenString)
	}

	return &model.LoginResponse{
		Success:  true,
		Token:    tokenString,
		Username: username,
	}, nil
}

// Logout is the resolver for the logout field.
func (r *mutationResolver) Logout(ctx context.Context) (string, error) {
	tokenString := auth.GetRawTokenFromContext(ctx)
	if tokenString == "" {
		return "No token found", nil
	}

	blacklisted, err := r.TokenStore.IsBlacklisted(ctx, tokenString)
	if err != nil {
		return "", fmt.Errorf("failed to check blacklist: %w", err)
	}
	if blacklisted {
		return "Already logged out", nil
	}

	claims, err := auth.ParseToken(tokenString)
	if err != nil {
		// невалидный токен не добавляем в черный список - мягкий успех
		return "Invalid token", nil
	}

	if err := r.TokenStore.BlacklistToken(ctx, tokenString, claims.ExpiresAt); err != nil {
		return "", fmt.Errorf("failed to blacklist token: %w", err)
	}

	return "Logout successful", nil
}

// UpdateProfile is the resolver for the updateProfile field.
func (r *mutationResolver) UpdateProfile(ctx context.Context, profilePhoto *string, description *string) (*model.Profile, error) {
	return r.UserStore.UpdateProfile(ctx, profilePhoto, description)
}

// DeleteProfile is the resolver for the deleteProfile field.
func (r *mutationResolver) DeleteProfile(ctx context.Context) (string, error) {
	username, err := auth.GetUsernameFromContext(ctx)
	if err != nil {
		return "", apperrors.NewUnauthorized("Unauthorized")
	}

	profile, err := r.UserStore.GetProfile(ctx, username)
	if err != nil {
		return "", err
	}

	// каскад из трех шагов без общей транзакции: посты, профиль, узел графа.
	// Частичный отказ оставляет хранилища рассогласованными
	if err := r.PostStore.DeletePostsByOwnerId(ctx, profile.ID); err != nil {
		return "", err
	}
	if err := r.UserStore.DeleteProfile(ctx); err != nil {
		return "", err
	}
	if err := r.GraphStore.DeleteUser(ctx, username); err != nil {
		return "", err
	}

	if w, err := auth.GetResponseWriterFromContext(ctx); err == nil {
		auth.ClearAuthCookie(w)
	}

	// текущий токен в черный список не попадает - он продолжает проходить проверку
	// подписи до истечения срока, но профиля за ним уже нет
	return "Profile deleted", nil
}

// FollowUser is the resolver for the followUser field.
func (r *mutationResolver) FollowUser(ctx context.Context, target string) (string, error) {
	username, err := auth.GetUsernameFromContext(ctx)
	if err != nil {
		return "", apperrors.NewUnauthorized("Unauthorized")
	}

	if username == target {
		return "", apperrors.NewValidation("You cannot follow yourself")
	}

	// проверка и создание ребра - два раунда до базы, не атомарно
	exists, err := r.GraphStore.IsFollowing(ctx, username, target)
	if err != nil {
		return "", err
	}
	if exists {
		return "Already following", nil
	}

	if err := r.GraphStore.Follow(ctx, username, target); err != nil {
		return "", err
	}

	return "Followed successfully", nil
}

// UnfollowUser is the resolver for the unfollowUser field.
func (r *mutationResolver) UnfollowUser(ctx context.Context, target string) (string, error) {
	username, err := auth.GetUsernameFromContext(ctx)
	if err != nil {
		return "", apperrors.NewUnauthorized("Unauthorized")
	}

	if err := r.GraphStore.Unfollow(ctx, username, target); err != nil {
		return "", err
	}

	return "Unfollowed successfully", nil
}

// CreatePost is the resolver for the createPost field.
func (r *mutationResolver) CreatePost(ctx context.Context, imagePath string, description *string) (*model.Post, error) {
	if imagePath == "" {
		return nil, apperrors.NewValidation("imagePath is required")
	}
	return r.PostStore.CreatePost(ctx, imagePath, description)
}

// DeletePost is the resolver for the deletePost field.
func (r *mutationResolver) DeletePost(ctx context.Context, postID string) (string, error) {
	if err := r.PostStore.DeletePostById(ctx, postID); err != nil {
		return "", err
	}
	return "Post deleted", nil
}

// LikePost is the resolver for the likePost field.
func (r *mutationResolver) LikePost(ctx context.Context, postID string) (*model.Post, error) {
	return r.PostStore.LikePost(ctx, postID)
}

// UnlikePost is the resolver for the unlikePost field.
func (r *mutationResolver) UnlikePost(ctx context.Context, postID string) (*model.Post, error) {
	return r.PostStore.UnlikePost(ctx, postID)
}

// AddComment is the resolver for the addComment field.
func (r *mutationResolver) AddComment(ctx context.Context, postID string, text string) (*model.Comment, error) {
	if text == "" {
		return nil, apperrors.NewValidation("comment text is required")
	}

	comment, err := r.PostStore.AddComment(ctx, postID, text)
	if err != nil {
		return nil, err
	}

	if r.SubscriptionManager != nil {
		r.SubscriptionManager.Publish(postID, comment)
	}

	return comment, nil
}

// GetPostsForFollowers is the resolver for the getPostsForFollowers field.
func (r *queryResolver) GetPostsForFollowers(ctx context.Context) ([]*model.Post, error) {
	username, err := auth.GetUsernameFromContext(ctx)
	if err != nil {
		return nil, apperrors.NewUnauthorized("Unauthorized")
	}

	// двухшаговое соединение: подписки из графовой базы, затем профили и посты
	// из документной. Общей транзакции между хранилищами нет
	following, err := r.GraphStore.Following(ctx, username)
	if err != nil {
		return nil, err
	}

	profiles, err := r.UserStore.GetProfilesByUsernames(ctx, following)
	if err != nil {
		return nil, err
	}

	ownerIds := make([]string, 0, len(profiles))
	for _, profile := range profiles {
		ownerIds = append(ownerIds, profile.ID)
	}

	return r.PostStore.GetPostsByOwnerIds(ctx, ownerIds)
}

// GetMyPosts is the resolver for the getMyPosts field.
func (r *queryResolver) GetMyPosts(ctx context.Context) ([]*model.Post, error) {
	username, err := auth.GetUsernameFromContext(ctx)
	if err != nil {
		return nil, apperrors.NewUnauthorized("Unauthorized")
	}

	profile, err := r.UserStore.GetProfile(ctx, username)
	if err != nil {
		return nil, err
	}

	return r.PostStore.GetPostsByOwnerIds(ctx, []string{profile.ID})
}

// GetPostsByUser is the resolver for the getPostsByUser field.
func (r *queryResolver) GetPostsByUser(ctx context.Context, userID string) ([]*model.Post, error) {
	return r.PostStore.GetPostsByOwnerIds(ctx, []string{userID})
}

// GetUserProfile is the resolver for the getUserProfile field.
func (r *queryResolver) GetUserProfile(ctx context.Context, username *string) (*model.Profile, error) {
	name, err := r.resolveUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return r.UserStore.GetProfile(ctx, name)
}

// GetFollowers is the resolver for the getFollowers field.
func (r *queryResolver) GetFollowers(ctx context.Context, username *string) ([]string, error) {
	name, err := r.resolveUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	followers, err := r.GraphStore.Followers(ctx, name)
	if err != nil {
		return nil, err
	}
	if followers == nil {
		followers = []string{}
	}
	return followers, nil
}

// GetFollowing is the resolver for the getFollowing field.
func (r *queryResolver) GetFollowing(ctx context.Context, username *string) ([]string, error) {
	name, err := r.resolveUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	following, err := r.GraphStore.Following(ctx, name)
	if err != nil {
		return nil, err
	}
	if following == nil {
		following = []string{}
	}
	return following, nil
}

// GetRecommendations is the resolver for the getRecommendations field.
func (r *queryResolver) GetRecommendations(ctx context.Context) ([]*model.Profile, error) {
	username, err := auth.GetUsernameFromContext(ctx)
	if err != nil {
		return nil, apperrors.NewUnauthorized("Unauthorized")
	}

	candidates, err := r.GraphStore.Recommendations(ctx, username, recommendationLimit)
	if err != nil {
		return nil, err
	}

	// при слишком бедном графе ранжирование отбрасывается и берется
	// случайная выборка остальных пользователей - нижняя граница качества
	if len(candidates) < 2 {
		all, err := r.UserStore.ListUsernames(ctx, username)
		if err != nil {
			return nil, err
		}
		rand.Shuffle(len(all), func(i, j int) {
			all[i], all[j] = all[j], all[i]
		})
		if len(all) > recommendationLimit {
			all = all[:recommendationLimit]
		}
		candidates = all
	}

	profiles, err := r.UserStore.GetProfilesByUsernames(ctx, candidates)
	if err != nil {
		return nil, err
	}
	if profiles == nil {
		profiles = []*model.Profile{}
	}
	return profiles, nil
}

// SearchUser is the resolver for the searchUser field.
func (r *queryResolver) SearchUser(ctx context.Context, username string) ([]*model.Profile, error) {
	if username == "" {
		return nil, apperrors.NewValidation("username is required")
	}
	return r.UserStore.SearchUsers(ctx, username)
}

// CommentAdded is the resolver for the commentAdded field.
func (r *subscriptionResolver) CommentAdded(ctx context.Context, postID string) (<-chan *model.Comment, error) {
	ch, cancel := r.SubscriptionManager.Subscribe(postID)

	// отписка при закрытии соединения
	go func() {
		<-ctx.Done()
		cancel()
	}()

	return ch, nil
}

// имя из аргумента, иначе из сессии
func (r *Resolver) resolveUsername(ctx context.Context, username *string) (string, error) {
	if username != nil && *username != "" {
		return *username, nil
	}
	name, err := auth.GetUsernameFromContext(ctx)
	if err != nil {
		return "", apperrors.NewUnauthorized("Unauthorized")
	}
	return name, nil
}

// Mutation returns generated.MutationResolver implementation.
func (r *Resolver) Mutation() generated.MutationResolver { return &mutationResolver{r} }

// Query returns generated.QueryResolver implementation.
func (r *Resolver) Query() generated.QueryResolver { return &queryResolver{r} }

// Subscription returns generated.SubscriptionResolver implementation.
func (r *Resolver) Subscription() generated.SubscriptionResolver { return &subscriptionResolver{r} }

type mutationResolver struct{ *Resolver }
type queryResolver struct{ *Resolver }
type subscriptionResolver struct{ *Resolver }
