// Package middlewarectx содержит middleware API: аутентификацию по
// Bearer-токену и ограничение частоты запросов.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/lms-platform/internal/http/response"
	"github.com/magabrotheeeer/lms-platform/internal/lib/apperr"
	"github.com/magabrotheeeer/lms-platform/internal/models"
)

type ctxKey string

const actorKey ctxKey = "actor"

// Authenticator проверяет access-токен и возвращает пользователя запроса.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (models.Actor, error)
}

// WithActor кладёт пользователя в контекст.
func WithActor(ctx context.Context, actor models.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext достаёт пользователя, положенного JWTMiddleware.
func ActorFromContext(ctx context.Context) (models.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(models.Actor)
	return actor, ok
}

// JWTMiddleware требует заголовок Authorization: Bearer <token>.
func JWTMiddleware(auth Authenticator, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			header := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || strings.TrimSpace(token) == "" {
				response.Fail(w, r, log, apperr.Unauthenticated("authentication credentials were not provided"))
				return
			}

			actor, err := auth.Authenticate(r.Context(), strings.TrimSpace(token))
			if err != nil {
				response.Fail(w, r, log, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}
