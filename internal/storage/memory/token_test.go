package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenMemoryStorage(t *testing.T) {
	storage := NewTokenMemoryStorage()
	ctx := context.Background()

	t.Run("Unknown token is not blacklisted", func(t *testing.T) {
		blacklisted, err := storage.IsBlacklisted(ctx, "some-token")
		require.NoError(t, err)
		assert.False(t, blacklisted)
	})

	t.Run("Blacklisted token is reported", func(t *testing.T) {
		err := storage.BlacklistToken(ctx, "some-token", time.Now().Add(time.Hour))
		require.NoError(t, err)

		blacklisted, err := storage.IsBlacklisted(ctx, "some-token")
		require.NoError(t, err)
		assert.True(t, blacklisted)
	})

	t.Run("Expired entries are kept", func(t *testing.T) {
		err := storage.BlacklistToken(ctx, "old-token", time.Now().Add(-time.Hour))
		require.NoError(t, err)

		blacklisted, err := storage.IsBlacklisted(ctx, "old-token")
		require.NoError(t, err)
		assert.True(t, blacklisted)
	})
}
