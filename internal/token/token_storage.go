package token

import (
	"context"
	"time"
)

type TokenStorage interface {
	IsBlacklisted(ctx context.Context, token string) (bool, error)
	BlacklistToken(ctx context.Context, token string, expiresAt time.Time) error
}
