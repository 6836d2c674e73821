package memory

import (
	"context"
	"sort"
	"sync"
)

// GraphMemoryStorage хранит направленные ребра FOLLOWS в map'ах
type GraphMemoryStorage struct {
	mu    sync.Mutex
	nodes map[string]bool
	edges map[string]map[string]bool // follower -> множество подписок
}

func NewGraphMemoryStorage() *GraphMemoryStorage {
	return &GraphMemoryStorage{
		nodes: make(map[string]bool),
		edges: make(map[string]map[string]bool),
	}
}

func (s *GraphMemoryStorage) CreateUser(ctx context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nodes[username] = true
	if s.edges[username] == nil {
		s.edges[username] = make(map[string]bool)
	}
	return nil
}

// DeleteUser удаляет узел вместе с инцидентными ребрами (аналог DETACH DELETE)
func (s *GraphMemoryStorage) DeleteUser(ctx context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.nodes, username)
	delete(s.edges, username)
	for _, followees := range s.edges {
		delete(followees, username)
	}
	return nil
}

func (s *GraphMemoryStorage) IsFollowing(ctx context.Context, follower, target string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.edges[follower][target], nil
}

func (s *GraphMemoryStorage) Follow(ctx context.Context, follower, target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.edges[follower] == nil {
		s.edges[follower] = make(map[string]bool)
	}
	s.edges[follower][target] = true
	return nil
}

func (s *GraphMemoryStorage) Unfollow(ctx context.Context, follower, target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// удаление отсутствующего ребра - no-op
	delete(s.edges[follower], target)
	return nil
}

func (s *GraphMemoryStorage) Followers(ctx context.Context, username string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	followers := make([]string, 0)
	for follower, followees := range s.edges {
		if followees[username] {
			followers = append(followers, follower)
		}
	}
	return followers, nil
}

func (s *GraphMemoryStorage) Following(ctx context.Context, username string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	following := make([]string, 0, len(s.edges[username]))
	for followee := range s.edges[username] {
		following = append(following, followee)
	}
	return following, nil
}

// Recommendations - кандидаты, подписанные на тех же пользователей, что и username.
// Исключаются сам пользователь, его подписки и те, кто уже подписан на него.
// Порядок при равном числе общих связей не определен
func (s *GraphMemoryStorage) Recommendations(ctx context.Context, username string, limit int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mutualCount := make(map[string]int)
	for candidate, followees := range s.edges {
		if candidate == username || s.edges[username][candidate] || followees[username] {
			continue
		}
		for followee := range s.edges[username] {
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
