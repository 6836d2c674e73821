package memory

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/VitaminP8/picstream/graph/model"
	"github.com/VitaminP8/picstream/internal/apperrors"
	"github.com/VitaminP8/picstream/internal/auth"

	"golang.org/x/crypto/bcrypt"
)

type UserMemoryStorage struct {
	mu        sync.Mutex
	profiles  map[string]*model.Profile // username -> profile
	passwords map[string]string         // username -> bcrypt hash
	nextId    int
}

func NewUserMemoryStorage() *UserMemoryStorage {
	return &UserMemoryStorage{
		profiles:  make(map[string]*model.Profile),
		passwords: make(map[string]string),
		nextId:    1,
	}
}

func (s *UserMemoryStorage) RegisterUser(ctx context.Context, username, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// проверка - существует ли такой пользователь
	_, exists := s.profiles[username]
	if exists {
		return apperrors.NewConflict(fmt.Sprintf("username %s already taken", username))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	id := strconv.Itoa(s.nextId)
	s.nextId++

	s.profiles[username] = &model.Profile{
		ID:       id,
		Username: username,
	}
	s.passwords[username] = string(hashedPassword)

	return nil
}

func (s *UserMemoryStorage) LoginUser(ctx context.Context, username, password string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.profiles[username]
	if !exists {
		return "", apperrors.NewNotFound(fmt.Sprintf("user %s not found", username))
	}

	hashedPassword, ok := s.passwords[username]
	if !ok {
		return "", apperrors.NewNotFound(fmt.Sprintf("password for user %s not found", username))
	}

	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	if err != nil {
		return "", apperrors.NewInvalidCredentials("invalid credentials")
	}

	return auth.GenerateToken(username)
}

func (s *UserMemoryStorage) GetProfile(ctx context.Context, username string) (*model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, exists := s.profiles[username]
	if !exists {
		return nil, apperrors.NewNotFound(fmt.Sprintf("profile %s not found", username))
	}

	return profile, nil
}

func (s *UserMemoryStorage) GetProfilesByUsernames(ctx context.Context, usernames []string) ([]*model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var profiles []*model.Profile
	for _, username := range usernames {
		if profile, exists := s.profiles[username]; exists {
			profiles = append(profiles, profile)
		}
	}

	return profiles, nil
}

func (s *UserMemoryStorage) UpdateProfile(ctx context.Context, profilePhoto, description *string) (*model.Profile, error) {
	username, err := auth.GetUsernameFromContext(ctx)
	if err != nil {
		return nil, apperrors.NewUnauthorized("not authenticated")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	profile, exists := s.profiles[username]
	if !exists {
		return nil, apperrors.NewNotFound(fmt.Sprintf("profile %s not found", username))
	}

	if profilePhoto != nil {
		profile.ProfilePhoto = profilePhoto
	}
	if description != nil {
		profile.Description = description
	}

	return profile, nil
}

func (s *UserMemoryStorage) DeleteProfile(ctx context.Context) error {
	username, err := auth.GetUsernameFromContext(ctx)
	if err != nil {
		return apperrors.NewUnauthorized("not authenticated")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.profiles[username]
	if !exists {
		return apperrors.NewNotFound(fmt.Sprintf("profile %s not found", username))
	}

	delete(s.profiles, username)
	delete(s.passwords, username)

	return nil
}

func (s *UserMemoryStorage) SearchUsers(ctx context.Context, username string) ([]*model.Profile, error) {
	caller, err := auth.GetUsernameFromContext(ctx)
	if err != nil {
		return nil, apperrors.NewUnauthorized("not authenticated")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// точное совпадение, сам пользователь исключается из результатов
	profile, exists := s.profiles[username]
	if !exists || username == caller {
		return []*model.Profile{}, nil
	}

	return []*model.Profile{profile}, nil
}

func (s *UserMemoryStorage) ListUsernames(ctx context.Context, exclude string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	usernames := make([]string, 0, len(s.profiles))
	for username := range s.profiles {
		if username != exclude {
			usernames = append(usernames, username)
		}
	}

	return usernames, nil
}
