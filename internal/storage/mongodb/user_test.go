package mongodb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Запросы с пустым списком имен не должны доходить до базы:
// nil-срез кодируется как {$in: null} и сервер отвечает BadValue.
// Пользователь без подписок получает пустую ленту, а не ошибку
func TestUserMongoStorage_GetProfilesByUsernames_Empty(t *testing.T) {
	storage := NewUserMongoStorage()
	ctx := context.Background()

	t.Run("Nil slice yields empty result", func(t *testing.T) {
		profiles, err := storage.GetProfilesByUsernames(ctx, nil)
		require.NoError(t, err)
		assert.NotNil(t, profiles)
		assert.Empty(t, profiles)
	})

	t.Run("Empty slice yields empty result", func(t *testing.T) {
		profiles, err := storage.GetProfilesByUsernames(ctx, []string{})
		require.NoError(t, err)
		assert.NotNil(t, profiles)
		assert.Empty(t, profiles)
	})
}
