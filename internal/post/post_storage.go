package post

import (
	"context"

	"github.com/VitaminP8/picstream/graph/model"
)

type PostStorage interface {
	CreatePost(ctx context.Context, imagePath string, description *string) (*model.Post, error)
	GetPostById(ctx context.Context, id string) (*model.Post, error)
	GetPostsByOwnerIds(ctx context.Context, ownerIds []string) ([]*model.Post, error)
	DeletePostById(ctx context.Context, id string) error
	DeletePostsByOwnerId(ctx context.Context, ownerId string) error
	LikePost(ctx context.Context, id string) (*model.Post, error)
	UnlikePost(ctx context.Context, id string) (*model.Post, error)
	AddComment(ctx context.Context, id, text string) (*model.Comment, error)
}
