// Package configupdate реализует HTTP-обработчик замены конфигурации
// пробного периода администратором.
//
// Конфигурация заменяется целиком: оба порога обязательны независимо от
// выбранного режима, чтобы переключение режима не теряло настройку второго.
// Новая политика действует немедленно для всех пользователей.
package configupdate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/trial-gatekeeper/internal/http/response"
	"github.com/magabrotheeeer/trial-gatekeeper/internal/lib/sl"
	"github.com/magabrotheeeer/trial-gatekeeper/internal/models"
	trialservice "github.com/magabrotheeeer/trial-gatekeeper/internal/services/trial"
)

// Handler управляет HTTP-запросами замены конфигурации.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики пробного периода
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс замены конфигурации.
type Service interface {
	SetConfig(ctx context.Context, req models.DummyTrialConfig) (*models.TrialConfig, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Заменить конфигурацию пробного периода
// @Description Целиком заменяет режим и пороги. Неположительные пороги отклоняются, прежняя конфигурация остаётся действующей.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.DummyTrialConfig true "Новая конфигурация"
// @Success 200 {object} map[string]any "Обновлённая конфигурация"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Требуется роль администратора"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации или недопустимые пороги"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/config [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.configupdate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyTrialConfig
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	cfg, err := h.service.SetConfig(r.Context(), req)
	if errors.Is(err, trialservice.ErrInvalidConfig) {
		log.Error("invalid trial config", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error(err.Error()))
		return
	}
	if err != nil {
		log.Error("failed to update trial config", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update trial config"))
		return
	}

	log.Info("trial config replaced", slog.String("mode", cfg.Mode))
	render.JSON(w, r, response.OKWithData(cfg))
}
