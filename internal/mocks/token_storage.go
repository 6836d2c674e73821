package mocks

import (
	"context"
	"sync"
	"time"
)

// MockTokenStorage реализует интерфейс token.TokenStorage для тестирования
type MockTokenStorage struct {
	mu     sync.Mutex
	tokens map[string]time.Time
}

// NewMockTokenStorage создает новый экземпляр мока для черного списка токенов
func NewMockTokenStorage() *MockTokenStorage {
	return &MockTokenStorage{
		tokens: make(map[string]time.Time),
	}
}

func (m *MockTokenStorage) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, exists := m.tokens[token]
	return exists, nil
}

func (m *MockTokenStorage) BlacklistToken(ctx context.Context, token string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tokens[token] = expiresAt
	return nil
}
