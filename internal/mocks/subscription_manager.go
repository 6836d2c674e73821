package mocks

import (
	"sync"

	"github.com/VitaminP8/picstream/graph/model"
)

// MockSubscriptionManager реализует интерфейс subscription.Manager для тестирования
type MockSubscriptionManager struct {
	mu   sync.Mutex
	subs map[string][]chan *model.Comment
}

// NewMockSubscriptionManager создает новый экземпляр мока менеджера подписок
func NewMockSubscriptionManager() *MockSubscriptionManager {
	return &MockSubscriptionManager{
		subs: make(map[string][]chan *model.Comment),
	}
}

func (m *MockSubscriptionManager) Subscribe(postID string) (<-chan *model.Comment, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan *model.Comment, 1)
	m.subs[postID] = append(m.subs[postID], ch)

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		subscribers := m.subs[postID]
		for i, sub := range subscribers {
			if sub == ch {
				m.subs[postID] = append(subscribers[:i], subscribers[i+1:]...)
				close(ch)
				break
			}
		}
	}

	return ch, cancel
}

func (m *MockSubscriptionManager) Publish(postID string, comment *model.Comment) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, sub := range m.subs[postID] {
		select {
		case sub <- comment:
		default:
		}
	}
}
