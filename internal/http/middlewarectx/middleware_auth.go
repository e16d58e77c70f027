// Package middlewarectx содержит HTTP middleware: проверку JWT токена,
// ограничение частоты запросов и сбор метрик.
//
// JWTMiddleware проверяет наличие и валидность JWT токена в заголовке Authorization
// и в случае успеха добавляет в контекст пользователя запроса (access.Identity)
// для дальнейшего использования в обработчиках.
//
// В случае ошибки проверки возвращает HTTP 401 Unauthorized с сообщением об ошибке.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/online-learning/internal/access"
	"github.com/magabrotheeeer/online-learning/internal/http/response"
	"github.com/magabrotheeeer/online-learning/internal/lib/sl"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// IdentityKey ключ пользователя запроса в контексте.
const IdentityKey Key = "identity"

// Authenticator описывает проверку access токена.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (access.Identity, error)
}

// JWTMiddleware возвращает HTTP middleware, который проверяет JWT в заголовке Authorization.
func JWTMiddleware(auth Authenticator, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Info("missing or invalid authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error(response.MsgUnauthenticated))
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			id, err := auth.Authenticate(r.Context(), tokenStr)
			if err != nil {
				log.Info("invalid or expired token", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error(response.MsgUnauthenticated))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// WithIdentity кладёт пользователя запроса в контекст.
func WithIdentity(ctx context.Context, id access.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, id)
}

// IdentityFrom достаёт пользователя запроса из контекста.
func IdentityFrom(ctx context.Context) (access.Identity, bool) {
	id, ok := ctx.Value(IdentityKey).(access.Identity)
	return id, ok && id.UserID != 0
}
