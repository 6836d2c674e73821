package memory

import (
	"context"
	"sync"
	"time"
)

type TokenMemoryStorage struct {
	mu     sync.Mutex
	tokens map[string]time.Time // токен -> срок действия
}

func NewTokenMemoryStorage() *TokenMemoryStorage {
	return &TokenMemoryStorage{
		tokens: make(map[string]time.Time),
	}
}

func (s *TokenMemoryStorage) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.tokens[token]
	return exists, nil
}

func (s *TokenMemoryStorage) BlacklistToken(ctx context.Context, token string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// просроченные записи не вычищаются - как и в Mongo-реализации
	s.tokens[token] = expiresAt
	return nil
}
