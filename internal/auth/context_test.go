package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTokenStore - локальная заглушка token.TokenStorage
// (internal/mocks импортирует auth, поэтому здесь нельзя использовать его)
type fakeTokenStore struct {
	blacklisted map[string]bool
	err         error
}

func (f *fakeTokenStore) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.blacklisted[token], nil
}

func (f *fakeTokenStore) BlacklistToken(ctx context.Context, token string, expiresAt time.Time) error {
	if f.err != nil {
		return f.err
	}
	if f.blacklisted == nil {
		f.blacklisted = make(map[string]bool)
	}
	f.blacklisted[token] = true
	return nil
}

func TestUsernameContext(t *testing.T) {
	t.Run("Round trip", func(t *testing.T) {
		ctx := WithUsername(context.Background(), "alice")
		username, err := GetUsernameFromContext(ctx)
		require.NoError(t, err)
		assert.Equal(t, "alice", username)
	})

	t.Run("Error when username is absent", func(t *testing.T) {
		_, err := GetUsernameFromContext(context.Background())
		assert.Error(t, err)
	})

	t.Run("Error when username is empty", func(t *testing.T) {
		_, err := GetUsernameFromContext(WithUsername(context.Background(), ""))
		assert.Error(t, err)
	})
}

func TestRawTokenContext(t *testing.T) {
	assert.Empty(t, GetRawTokenFromContext(context.Background()))

	ctx := WithRawToken(context.Background(), "raw-token")
	assert.Equal(t, "raw-token", GetRawTokenFromContext(ctx))
}

type capturedContext struct {
	username string
	rawToken string
	hasUser  bool
	called   bool
}

func runMiddleware(t *testing.T, store *fakeTokenStore, prepare func(r *http.Request)) (*capturedContext, *httptest.ResponseRecorder) {
	t.Helper()

	captured := &capturedContext{}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.called = true
		captured.rawToken = GetRawTokenFromContext(r.Context())
		if username, err := GetUsernameFromContext(r.Context()); err == nil {
			captured.username = username
			captured.hasUser = true
		}

		// writer всегда должен быть в контексте
		_, err := GetResponseWriterFromContext(r.Context())
		assert.NoError(t, err)
	})

	r := httptest.NewRequest(http.MethodPost, "/query", nil)
	if prepare != nil {
		prepare(r)
	}
	w := httptest.NewRecorder()

	Middleware(store, next).ServeHTTP(w, r)
	return captured, w
}

func TestMiddleware(t *testing.T) {
	validToken, err := GenerateToken("alice")
	require.NoError(t, err)

	t.Run("No token passes through unauthenticated", func(t *testing.T) {
		captured, w := runMiddleware(t, &fakeTokenStore{}, nil)
		assert.True(t, captured.called)
		assert.False(t, captured.hasUser)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Valid token in cookie authenticates request", func(t *testing.T) {
		captured, w := runMiddleware(t, &fakeTokenStore{}, func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: CookieName, Value: validToken})
		})
		assert.True(t, captured.hasUser)
		assert.Equal(t, "alice", captured.username)
		assert.Equal(t, validToken, captured.rawToken)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Valid token in Authorization header authenticates request", func(t *testing.T) {
		captured, _ := runMiddleware(t, &fakeTokenStore{}, func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+validToken)
		})
		assert.True(t, captured.hasUser)
		assert.Equal(t, "alice", captured.username)
	})

	t.Run("Cookie takes precedence over header", func(t *testing.T) {
		otherToken, err := GenerateToken("bob")
		require.NoError(t, err)

		captured, _ := runMiddleware(t, &fakeTokenStore{}, func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: CookieName, Value: validToken})
			r.Header.Set("Authorization", "Bearer "+otherToken)
		})
		assert.Equal(t, "alice", captured.username)
	})

	t.Run("Invalid token passes through unauthenticated with raw token kept", func(t *testing.T) {
		captured, w := runMiddleware(t, &fakeTokenStore{}, func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: CookieName, Value: "garbage"})
		})
		assert.True(t, captured.called)
		assert.False(t, captured.hasUser)
		assert.Equal(t, "garbage", captured.rawToken)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Blacklisted token is rejected with 401", func(t *testing.T) {
		store := &fakeTokenStore{blacklisted: map[string]bool{validToken: true}}
		captured, w := runMiddleware(t, store, func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: CookieName, Value: validToken})
		})
		assert.False(t, captured.called)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "token is blacklisted")
	})

	t.Run("Blacklist store failure is rejected with 500", func(t *testing.T) {
		store := &fakeTokenStore{err: errors.New("connection refused")}
		captured, w := runMiddleware(t, store, func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: CookieName, Value: validToken})
		})
		assert.False(t, captured.called)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("Malformed Authorization header is ignored", func(t *testing.T) {
		captured, _ := runMiddleware(t, &fakeTokenStore{}, func(r *http.Request) {
			r.Header.Set("Authorization", "Basic dXNlcjpwdw==")
		})
		assert.True(t, captured.called)
		assert.False(t, captured.hasUser)
		assert.Empty(t, captured.rawToken)
	})
}
