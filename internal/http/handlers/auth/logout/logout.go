// Package logout реализует HTTP-обработчик выхода из системы.
// Отзывает сессию по токену из заголовка Authorization.
package logout

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/trial-gatekeeper/internal/http/response"
	"github.com/magabrotheeeer/trial-gatekeeper/internal/lib/sl"
)

// Handler управляет HTTP-запросами выхода из системы.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики сессий
}

// Service описывает интерфейс бизнес-логики отзыва сессии.
type Service interface {
	SignOut(ctx context.Context, token string) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Выйти из системы
// @Description Отзывает текущую сессию. Токен после этого перестаёт приниматься.
// @Tags Auth
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Сессия отозвана"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при выходе"
// @Router /logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	tokenStr := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if err := h.service.SignOut(r.Context(), tokenStr); err != nil {
		log.Error("failed to sign out", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not sign out"))
		return
	}

	log.Info("user signed out")
	render.JSON(w, r, response.OKWithData(map[string]any{
		"signed_out": true,
	}))
}
