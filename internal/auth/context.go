package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/VitaminP8/picstream/internal/token"
)

type contextKey string

const usernameKey = contextKey("username")
const rawTokenKey = contextKey("rawToken")
const responseWriterKey = contextKey("responseWriter")

// Сохраняет имя пользователя в контексте
func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, usernameKey, username)
}

// Достает имя пользователя из контекста
func GetUsernameFromContext(ctx context.Context) (string, error) {
	val := ctx.Value(usernameKey)
	username, ok := val.(string)
	if !ok || username == "" {
		return "", errors.New("username not found in context")
	}
	return username, nil
}

// Сохраняет сырой токен запроса в контексте (нужен для logout)
func WithRawToken(ctx context.Context, tokenStr string) context.Context {
	return context.WithValue(ctx, rawTokenKey, tokenStr)
}

// Достает сырой токен из контекста. Пустая строка - токена в запросе не было
func GetRawTokenFromContext(ctx context.Context) string {
	val := ctx.Value(rawTokenKey)
	tokenStr, ok := val.(string)
	if !ok {
		return ""
	}
	return tokenStr
}

// Сохраняет http.ResponseWriter в контексте (резолверы login/logout/deleteProfile пишут куки)
func WithResponseWriter(ctx context.Context, w http.ResponseWriter) context.Context {
	return context.WithValue(ctx, responseWriterKey, w)
}

// Достает http.ResponseWriter из контекста
func GetResponseWriterFromContext(ctx context.Context) (http.ResponseWriter, error) {
	val := ctx.Value(responseWriterKey)
	w, ok := val.(http.ResponseWriter)
	if !ok {
		return nil, errors.New("response writer not found in context")
	}
	return w, nil
}

// Middleware извлекает токен из куки или заголовка Authorization, проверяет черный список,
// валидирует подпись и кладет имя пользователя в context.
// Отсутствующий или невалидный токен - запрос идет дальше неаутентифицированным.
// Токен из черного списка - жесткий отказ (fail closed)
func Middleware(tokens token.TokenStorage, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := WithResponseWriter(r.Context(), w)

		tokenStr := extractToken(r)
		if tokenStr == "" {
			next.ServeHTTP(w, r.WithContext(ctx)) // неавторизованный доступ - пропускаем
			return
		}

		ctx = WithRawToken(ctx, tokenStr)

		blacklisted, err := tokens.IsBlacklisted(ctx, tokenStr)
		if err != nil {
			http.Error(w, "failed to check token blacklist", http.StatusInternalServerError)
			return
		}
		if blacklisted {
			http.Error(w, "token is blacklisted", http.StatusUnauthorized)
			return
		}

		claims, err := ParseToken(tokenStr)
		if err != nil {
			next.ServeHTTP(w, r.WithContext(ctx)) // если невалидный токен - пропускаем
			return
		}

		ctx = WithUsername(ctx, claims.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Токен ищем сначала в куке, затем в заголовке Authorization
func extractToken(r *http.Request) string {
	cookie, err := r.Cookie(CookieName)
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return extractTokenFromHeader(r.Header.Get("Authorization"))
}

func extractTokenFromHeader(header string) string {
	parts := strings.Split(header, " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}
