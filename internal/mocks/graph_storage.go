package mocks

import (
	"context"
	"sort"
	"sync"
)

// MockGraphStorage реализует интерфейс social.GraphStorage для тестирования
type MockGraphStorage struct {
	mu    sync.Mutex
	nodes map[string]bool
	edges map[string]map[string]bool // follower -> множество подписок
}

// NewMockGraphStorage создает новый экземпляр мока для графового хранилища
func NewMockGraphStorage() *MockGraphStorage {
	return &MockGraphStorage{
		nodes: make(map[string]bool),
		edges: make(map[string]map[string]bool),
	}
}

// EdgeCount возвращает количество ребер от follower к target (для проверок в тестах)
func (m *MockGraphStorage) EdgeCount(follower, target string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.edges[follower][target] {
		return 1
	}
	return 0
}

// HasNode проверяет наличие узла (для проверок в тестах)
func (m *MockGraphStorage) HasNode(username string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.nodes[username]
}

func (m *MockGraphStorage) CreateUser(ctx context.Context, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nodes[username] = true
	if m.edges[username] == nil {
		m.edges[username] = make(map[string]bool)
	}
	return nil
}

func (m *MockGraphStorage) DeleteUser(ctx context.Context, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.nodes, username)
	delete(m.edges, username)
	for _, followees := range m.edges {
		delete(followees, username)
	}
	return nil
}

func (m *MockGraphStorage) IsFollowing(ctx context.Context, follower, target string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.edges[follower][target], nil
}

func (m *MockGraphStorage) Follow(ctx context.Context, follower, target string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.edges[follower] == nil {
		m.edges[follower] = make(map[string]bool)
	}
	m.edges[follower][target] = true
	return nil
}

func (m *MockGraphStorage) Unfollow(ctx context.Context, follower, target string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.edges[follower], target)
	return nil
}

func (m *MockGraphStorage) Followers(ctx context.Context, username string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	followers := make([]string, 0)
	for follower, followees := range m.edges {
		if followees[username] {
			followers = append(followers, follower)
		}
	}
	return followers, nil
}

func (m *MockGraphStorage) Following(ctx context.Context, username string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	following := make([]string, 0, len(m.edges[username]))
	for followee := range m.edges[username] {
		following = append(following, followee)
	}
	return following, nil
}

func (m *MockGraphStorage) Recommendations(ctx context.Context, username string, limit int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mutualCount := make(map[string]int)
	for candidate, followees := range m.edges {
		if candidate == username || m.edges[username][candidate] || followees[username] {
			continue
		}
		for followee := range m.edges[username] {
			if followees[followee] {
				mutualCount[candidate]++
			}
		}
	}

	candidates := make([]string, 0, len(mutualCount))
	for candidate := range mutualCount {
		candidates = append(candidates, candidate)
	}
	sort.Slice(candidates, func(i, j int) bool {
		return mutualCount[candidates[i]] > mutualCount[candidates[j]]
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}
