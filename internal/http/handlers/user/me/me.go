// Package me реализует HTTP-обработчик статуса текущего пользователя.
//
// Возвращает актуальную запись пользователя, решение политики пробного
// периода и долю израсходованного периода для баннера. Решение считает
// тот же вычислитель, что и запись использования.
package me

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/trial-gatekeeper/internal/http/middlewarectx"
	"github.com/magabrotheeeer/trial-gatekeeper/internal/http/response"
	"github.com/magabrotheeeer/trial-gatekeeper/internal/lib/sl"
	"github.com/magabrotheeeer/trial-gatekeeper/internal/models"
)

// Handler управляет HTTP-запросами статуса текущего пользователя.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики пробного периода
}

// Service описывает интерфейс бизнес-логики статуса пробного периода.
type Service interface {
	Status(ctx context.Context, userUID string) (*models.User, models.Decision, float64, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Статус текущего пользователя
// @Description Возвращает запись пользователя, решение политики и прогресс пробного периода.
// @Tags User
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Статус пользователя"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.me"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	current, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		log.Error("user not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("please sign in again"))
		return
	}

	user, decision, progress, err := h.service.Status(r.Context(), current.UID)
	if err != nil {
		log.Error("failed to get trial status", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not get trial status"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"user":     user,
		"trial":    decision,
		"progress": progress,
	}))
}
