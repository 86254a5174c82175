// Package middlewarectx содержит HTTP middleware для разрешения сессий
// и проверки роли пользователя.
//
// SessionMiddleware проверяет наличие токена в заголовке Authorization,
// разрешает сессию через сервис аутентификации и кладёт актуальную запись
// пользователя в контекст запроса. Запись всегда перечитывается из
// хранилища, полям токена сверх ссылки на сессию не доверяем.
//
// В случае ошибки проверки возвращает HTTP 401 Unauthorized.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/trial-gatekeeper/internal/http/response"
	"github.com/magabrotheeeer/trial-gatekeeper/internal/lib/sl"
	"github.com/magabrotheeeer/trial-gatekeeper/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// User — ключ для записи пользователя в контексте.
const User Key = "user"

// SessionResolver описывает интерфейс сервиса для разрешения токена сессии.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*models.User, error)
}

// UserFromContext извлекает запись пользователя, положенную SessionMiddleware.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(User).(*models.User)
	return u, ok
}

// SessionMiddleware возвращает HTTP middleware, который разрешает сессию
// по токену из заголовка Authorization.
//
// Если сессия жива, кладёт актуальную запись пользователя в контекст запроса,
// иначе возвращает ошибку с HTTP статусом 401 Unauthorized.
func SessionMiddleware(auth SessionResolver, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			const op = "middlewarectx.SessionMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Error("missing or invalid authorization header")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("please sign in again"))
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			user, err := auth.ResolveSession(r.Context(), tokenStr)
			if err != nil {
				log.Error("failed to resolve session", sl.Err(err))
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("please sign in again"))
				return
			}
			ctx := context.WithValue(r.Context(), User, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminOnlyMiddleware пропускает дальше только администраторов.
// Должен стоять после SessionMiddleware.
func AdminOnlyMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.AdminOnlyMiddleware"

			user, ok := UserFromContext(r.Context())
			if !ok {
				log.Error("user missing in context", slog.String("op", op))
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("please sign in again"))
				return
			}
			if !user.IsAdmin() {
				log.Error("admin access denied", slog.String("op", op),
					slog.String("uid", user.UID))
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Error("admin access required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
