package social

import "context"

// GraphStorage - направленный граф FOLLOWS между пользователями.
// Узлы ключуются по username (ключ соединения с документной базой)
type GraphStorage interface {
	CreateUser(ctx context.Context, username string) error
	DeleteUser(ctx context.Context, username string) error
	IsFollowing(ctx context.Context, follower, target string) (bool, error)
	Follow(ctx context.Context, follower, target string) error
	Unfollow(ctx context.Context, follower, target string) error
	Followers(ctx context.Context, username string) ([]string, error)
	Following(ctx context.Context, username string) ([]string, error)
	Recommendations(ctx context.Context, username string, limit int) ([]string, error)
}
