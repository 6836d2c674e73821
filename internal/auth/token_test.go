package auth

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "test_secret_key_for_jwt")
	os.Exit(m.Run())
}

func TestGenerateAndParseToken(t *testing.T) {
	t.Run("Round trip preserves username and expiry", func(t *testing.T) {
		tokenString, err := GenerateToken("alice")
		require.NoError(t, err)
		require.NotEmpty(t, tokenString)

		claims, err := ParseToken(tokenString)
		require.NoError(t, err)
		assert.Equal(t, "alice", claims.Username)
		assert.WithinDuration(t, time.Now().Add(TokenTTL), claims.ExpiresAt, time.Minute)
	})

	t.Run("Error when JWT_SECRET is not set", func(t *testing.T) {
		original := os.Getenv("JWT_SECRET")
		require.NoError(t, os.Unsetenv("JWT_SECRET"))
		defer os.Setenv("JWT_SECRET", original)

		_, err := GenerateToken("alice")
		assert.Error(t, err)

		_, err = ParseToken("anything")
		assert.Error(t, err)
	})

	t.Run("Error on garbage token", func(t *testing.T) {
		_, err := ParseToken("not-a-jwt")
		assert.Error(t, err)
	})

	t.Run("Error on token signed with another secret", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"username": "alice",
			"exp":      time.Now().Add(time.Hour).Unix(),
		})
		foreign, err := token.SignedString([]byte("another_secret"))
		require.NoError(t, err)

		_, err = ParseToken(foreign)
		assert.Error(t, err)
	})

	t.Run("Error on expired token", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"username": "alice",
			"exp":      time.Now().Add(-time.Hour).Unix(),
		})
		expired, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
		require.NoError(t, err)

		_, err = ParseToken(expired)
		assert.Error(t, err)
	})

	t.Run("Error when username claim is missing", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		anonymous, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
		require.NoError(t, err)

		_, err = ParseToken(anonymous)
		assert.Error(t, err)
	})
}

func TestAuthCookie(t *testing.T) {
	t.Run("SetAuthCookie writes HTTP-only cookie", func(t *testing.T) {
		w := httptest.NewRecorder()
		SetAuthCookie(w, "token-value")

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		cookie := cookies[0]
		assert.Equal(t, CookieName, cookie.Name)
		assert.Equal(t, "token-value", cookie.Value)
		assert.Equal(t, "/", cookie.Path)
		assert.True(t, cookie.HttpOnly)
		assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	})

	t.Run("ClearAuthCookie expires the cookie", func(t *testing.T) {
		w := httptest.NewRecorder()
		ClearAuthCookie(w)

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		cookie := cookies[0]
		assert.Equal(t, CookieName, cookie.Name)
		assert.Empty(t, cookie.Value)
		assert.Negative(t, cookie.MaxAge)
	})
}
