package memory

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

type PostMemoryStorage struct {
	mu     sync.Mutex
	posts  map[string]*model.Post
	times  map[string]time.Time // postID -> время создания (для сортировки ленты)
	users  user.UserStorage
	nextId int
}

func NewPostMemoryStorage(users user.UserStorage) *PostMemoryStorage {
	return &PostMemoryStorage{
		posts:  make(map[string]*model.Post),
		times:  make(map[string]time.Time),
		users:  users,
		nextId: 1,
	}
}

func (s *PostMemoryStorage) CreatePost(ctx context.Context, imagePath string, description *string) (*model.Post, error) {
	// Контекст читаем до мьютекса (read-only структура, создается заново на каждый запрос)
	username, err := auth.GetUsernameFromContext(ctx)
	if err != nil {
		return nil, apperrors.NewUnauthorized("not authenticated")
	}

	owner, err := s.users.GetProfile(ctx, username)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := strconv.Itoa(s.nextId)
	s.nextId++

	now := time.Now().UTC()
	post := &model.Post{
		ID:          id,
		Owner:       owner,
		ImagePath:   imagePath,
		Description: description,
		CreatedAt:   now.Format(time.RFC3339),
		Likes:       []string{},
		LikeCount:   0,
		Comments:    []*model.Comment{},
	}

	s.posts[id] = post
	s.times[id] = now
	return post, nil
}

func (s *PostMemoryStorage) GetPostById(ctx context.Context, id string) (*model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, exists := s.posts[id]
	if !exists {
		return nil, apperrors.NewNotFound("post not found")
	}

	return post, nil
}

func (s *PostMemoryStorage) GetPostsByOwnerIds(ctx context.Context, ownerIds []string) ([]*model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	owners := make(map[string]bool, len(ownerIds))
	for _, id := range ownerIds {
		owners[id] = true
	}

	posts := make([]*model.Post, 0)
	for _, post := range s.posts {
		if owners[post.Owner.ID] {
			posts = append(posts, post)
		}
	}

	// новые посты первыми
	sort.Slice(posts, func(i, j int) bool {
		ti, tj := s.times[posts[i].ID], s.times[posts[j].ID]
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return posts[i].ID > posts[j].ID
	})

	return posts, nil
}

func (s *PostMemoryStorage) DeletePostById(ctx context.Context, id string) error {
	username, err := auth.GetUsernameFromContext(ctx)
	if err != nil {
		return apperrors.NewUnauthorized("not authenticated")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	post, exists := s.posts[id]
	if !exists {
		return apperrors.NewNotFound("post not found")
	}

	if post.Owner.Username != username {
		return apperrors.NewForbidden("you are not the owner of this post")
	}

	delete(s.posts, id)
	delete(s.times, id)
	return nil
}

func (s *PostMemoryStorage) DeletePostsByOwnerId(ctx context.Context, ownerId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, post := range s.posts {
		if post.Owner.ID == ownerId {
			delete(s.posts, id)
			delete(s.times, id)
		}
	}

	return nil
}

func (s *PostMemoryStorage) LikePost(ctx context.Context, id string) (*model.Post, error) {
	username, err := auth.GetUsernameFromContext(ctx)
	if err != nil {
		return nil, apperrors.NewUnauthorized("not authenticated")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	post, exists := s.posts[id]
	if !exists {
		return nil, apperrors.NewNotFound("post not found")
	}

	// check-then-act: проверка и добавление не атомарны относительно других хранилищ,
	// внутри памяти защищены мьютексом
	for _, likedBy := range post.Likes {
		if likedBy == username {
			return nil, apperrors.NewConflict("Post already liked")
		}
	}

	post.Likes = append(post.Likes, username)
	post.LikeCount = len(post.Likes)
	return post, nil
}

func (s *PostMemoryStorage) UnlikePost(ctx context.Context, id string) (*model.Post, error) {
	username, err := auth.GetUsernameFromContext(ctx)
	if err != nil {
		return nil, apperrors.NewUnauthorized("not authenticated")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	post, exists := s.posts[id]
	if !exists {
		return nil, apperrors.NewNotFound("post not found")
	}

	// идемпотентно: отсутствие лайка - не ошибка
	for i, likedBy := range post.Likes {
		if likedBy == username {
			post.Likes = append(post.Likes[:i], post.Likes[i+1:]...)
			break
		}
	}
	post.LikeCount = len(post.Likes)
	return post, nil
}

func (s *PostMemoryStorage) AddComment(ctx context.Context, id, text string) (*model.Comment, error) {
	username, err := auth.GetUsernameFromContext(ctx)
	if err != nil {
		return nil, apperrors.NewUnauthorized("not authenticated")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	post, exists := s.posts[id]
	if !exists {
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
