package mocks

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/VitaminP8/picstream/graph/model"
	"github.com/VitaminP8/picstream/internal/apperrors"
	"github.com/VitaminP8/picstream/internal/auth"
)

// MockUserStorage реализует интерфейс user.UserStorage для тестирования
type MockUserStorage struct {
	mu        sync.Mutex
	profiles  map[string]*model.Profile // username -> profile
	passwords map[string]string         // username -> password (без хэширования)
	nextID    int
}

// NewMockUserStorage создает новый экземпляр мока для хранилища пользователей
func NewMockUserStorage() *MockUserStorage {
	return &MockUserStorage{
		profiles:  make(map[string]*model.Profile),
		passwords: make(map[string]string),
		nextID:    1,
	}
}

// RegisterUser имитирует регистрацию пользователя
func (m *MockUserStorage) RegisterUser(ctx context.Context, username, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.profiles[username]; exists {
		return apperrors.NewConflict("username " + username + " already taken")
	}

	id := m.nextID
	m.nextID++

	m.profiles[username] = &model.Profile{
		ID:       strconv.Itoa(id),
		Username: username,
	}
	m.passwords[username] = password

	return nil
}

// LoginUser имитирует вход - возвращает фиктивный токен без подписи
func (m *MockUserStorage) LoginUser(ctx context.Context, username, password string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.profiles[username]; !exists {
		return "", apperrors.NewNotFound("user " + username + " not found")
	}
	if m.passwords[username] != password {
		return "", apperrors.NewInvalidCredentials("invalid credentials")
	}

	return "jwt-token-for-user-" + username, nil
}

func (m *MockUserStorage) GetProfile(ctx context.Context, username string) (*model.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	profile, exists := m.profiles[username]
	if !exists {
		return nil, apperrors.NewNotFound(fmt.Sprintf("profile %s not found", username))
	}
	return profile, nil
}

func (m *MockUserStorage) GetProfilesByUsernames(ctx context.Context, usernames []string) ([]*model.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var profiles []*model.Profile
	for _, username := range usernames {
		if profile, exists := m.profiles[username]; exists {
			profiles = append(profiles, profile)
		}
	}
	return profiles, nil
}

func (m *MockUserStorage) UpdateProfile(ctx context.Context, profilePhoto, description *string) (*model.Profile, error) {
	username, err := auth.GetUsernameFromContext(ctx)
	if err != nil {
		return nil, apperrors.NewUnauthorized("not authenticated")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	profile, exists := m.profiles[username]
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

func (m *MockUserStorage) DeleteProfile(ctx context.Context) error {
	username, err := auth.GetUsernameFromContext(ctx)
	if err != nil {
		return apperrors.NewUnauthorized("not authenticated")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.profiles[username]; !exists {
		return apperrors.NewNotFound(fmt.Sprintf("profile %s not found", username))
	}

	delete(m.profiles, username)
	delete(m.passwords, username)
	return nil
}

func (m *MockUserStorage) SearchUsers(ctx context.Context, username string) ([]*model.Profile, error) {
	caller, err := auth.GetUsernameFromContext(ctx)
	if err != nil {
		return nil, apperrors.NewUnauthorized("not authenticated")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	profile, exists := m.profiles[username]
	if !exists || username == caller {
		return []*model.Profile{}, nil
	}
	return []*model.Profile{profile}, nil
}

func (m *MockUserStorage) ListUsernames(ctx context.Context, exclude string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	usernames := make([]string, 0, len(m.profiles))
	for username := range m.profiles {
		if username != exclude {
			usernames = append(usernames, username)
		}
	}
	return usernames, nil
}
