package user

import (
	"context"

	"github.com/VitaminP8/picstream/graph/model"
)

type UserStorage interface {
	RegisterUser(ctx context.Context, username, password string) error
	LoginUser(ctx context.Context, username, password string) (string, error) // JWT
	GetProfile(ctx context.Context, username string) (*model.Profile, error)
	GetProfilesByUsernames(ctx context.Context, usernames []string) ([]*model.Profile, error)
	UpdateProfile(ctx context.Context, profilePhoto, description *string) (*model.Profile, error)
	DeleteProfile(ctx context.Context) error
	SearchUsers(ctx context.Context, username string) ([]*model.Profile, error)
	ListUsernames(ctx context.Context, exclude string) ([]string, error)
}
