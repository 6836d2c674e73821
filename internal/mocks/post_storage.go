package mocks

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/VitaminP8/picstream/graph/model"
	"github.com/VitaminP8/picstream/internal/apperrors"
	"github.com/VitaminP8/picstream/internal/auth"
	"github.com/VitaminP8/picstream/internal/user"
)

// MockPostStorage реализует интерфейс post.PostStorage для тестирования
type MockPostStorage struct {
	mu     sync.Mutex
	posts  map[string]*model.Post
	order  map[string]int // postID -> порядковый номер вставки (для сортировки)
	users  user.UserStorage
	nextID int
}

// NewMockPostStorage создает новый экземпляр мока для хранилища постов
func NewMockPostStorage(users user.UserStorage) *MockPostStorage {
	return &MockPostStorage{
		posts:  make(map[string]*model.Post),
		order:  make(map[string]int),
		users:  users,
		nextID: 1,
	}
}

func (m *MockPostStorage) CreatePost(ctx context.Context, imagePath string, description *string) (*model.Post, error) {
	username, err := auth.GetUsernameFromContext(ctx)
	if err != nil {
		return nil, apperrors.NewUnauthorized("not authenticated")
	}

	owner, err := m.users.GetProfile(ctx, username)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := strconv.Itoa(m.nextID)
	post := &model.Post{
		ID:          id,
		Owner:       owner,
		ImagePath:   imagePath,
		Description: description,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
		Likes:       []string{},
		LikeCount:   0,
		Comments:    []*model.Comment{},
	}
	m.posts[id] = post
	m.order[id] = m.nextID
	m.nextID++
	return post, nil
}

func (m *MockPostStorage) GetPostById(ctx context.Context, id string) (*model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	post, ok := m.posts[id]
	if !ok {
		return nil, apperrors.NewNotFound("post not found")
	}
	return post, nil
}

func (m *MockPostStorage) GetPostsByOwnerIds(ctx context.Context, ownerIds []string) ([]*model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	owners := make(map[string]bool, len(ownerIds))
	for _, id := range ownerIds {
		owners[id] = true
	}

	posts := make([]*model.Post, 0)
	for _, post := range m.posts {
		if owners[post.Owner.ID] {
			posts = append(posts, post)
		}
	}

	// новые посты первыми (по порядку вставки)
	sort.Slice(posts, func(i, j int) bool {
		return m.order[posts[i].ID] > m.order[posts[j].ID]
	})
	return posts, nil
}

func (m *MockPostStorage) DeletePostById(ctx context.Context, id string) error {
	username, err := auth.GetUsernameFromContext(ctx)
	if err != nil {
		return apperrors.NewUnauthorized("not authenticated")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	post, ok := m.posts[id]
	if !ok {
		return apperrors.NewNotFound("post not found")
	}
	if post.Owner.Username != username {
		return apperrors.NewForbidden("you are not the owner of this post")
	}

	delete(m.posts, id)
	delete(m.order, id)
	return nil
}

func (m *MockPostStorage) DeletePostsByOwnerId(ctx context.Context, ownerId string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, post := range m.posts {
		if post.Owner.ID == ownerId {
			delete(m.posts, id)
			delete(m.order, id)
		}
	}
	return nil
}

func (m *MockPostStorage) LikePost(ctx context.Context, id string) (*model.Post, error) {
	username, err := auth.GetUsernameFromContext(ctx)
	if err != nil {
		return nil, apperrors.NewUnauthorized("not authenticated")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	post, ok := m.posts[id]
	if !ok {
		return nil, apperrors.NewNotFound("post not found")
	}

	for _, likedBy := range post.Likes {
		if likedBy == username {
			return nil, apperrors.NewConflict("Post already liked")
		}
	}

	post.Likes = append(post.Likes, username)
	post.LikeCount = len(post.Likes)
	return post, nil
}

func (m *MockPostStorage) UnlikePost(ctx context.Context, id string) (*model.Post, error) {
	username, err := auth.GetUsernameFromContext(ctx)
	if err != nil {
		return nil, apperrors.NewUnauthorized("not authenticated")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	post, ok := m.posts[id]
	if !ok {
		return nil, apperrors.NewNotFound("post not found")
	}

	for i, likedBy := range post.Likes {
		if likedBy == username {
			post.Likes = append(post.Likes[:i], post.Likes[i+1:]...)
			break
		}
	}
	post.LikeCount = len(post.Likes)
	return post, nil
}

func (m *MockPostStorage) AddComment(ctx context.Context, id, text string) (*model.Comment, error) {
	username, err := auth.GetUsernameFromContext(ctx)
	if err != nil {
		return nil, apperrors.NewUnauthorized("not authenticated")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	post, ok := m.posts[id]
	if !ok {
		return nil, apperrors.NewNotFound("post not found")
	}

	comment := &model.Comment{
		Username:  username,
		Text:      text,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	post.Comments = append(post.Comments, comment)
	return comment, nil
}
