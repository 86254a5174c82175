// Package predict реализует HTTP-обработчик закрытого действия —
// запроса предсказания к модели.
//
// Handler принимает JSON-запрос с текстом, валидирует его, извлекает
// пользователя из контекста и вызывает бизнес-логику предсказания.
// Отказ политики пробного периода возвращается с кодом 403 и дословной
// причиной — это штатный ответ, а не сбой сервера.
package predict

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/trial-gatekeeper/internal/http/middlewarectx"
	"github.com/magabrotheeeer/trial-gatekeeper/internal/http/response"
	"github.com/magabrotheeeer/trial-gatekeeper/internal/lib/sl"
	"github.com/magabrotheeeer/trial-gatekeeper/internal/models"
	predictionservice "github.com/magabrotheeeer/trial-gatekeeper/internal/services/prediction"
	trialservice "github.com/magabrotheeeer/trial-gatekeeper/internal/services/trial"
	"github.com/magabrotheeeer/trial-gatekeeper/internal/storage/repository"
)

// Handler управляет HTTP-запросами предсказаний.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики предсказаний
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики предсказания.
type Service interface {
	Predict(ctx context.Context, userUID, prompt string) (*predictionservice.Result, error)
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
// @Summary Запросить предсказание
// @Description Записывает использование и возвращает текст предсказания. При исчерпанном пробном периоде возвращает 403 с причиной отказа.
// @Tags Predictions
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.DummyPrompt true "Текст запроса к модели"
// @Success 200 {object} map[string]any "Предсказание выполнено"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Пробный период исчерпан"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /predict [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.prediction.predict"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyPrompt
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

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		log.Error("user not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("please sign in again"))
		return
	}

	result, err := h.service.Predict(r.Context(), user.UID, req.Prompt)
	switch {
	case errors.Is(err, trialservice.ErrLimitReached) || errors.Is(err, trialservice.ErrTrialExpired):
		log.Info("prediction denied by trial policy", sl.Err(err))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error(err.Error()))
		return
	case errors.Is(err, repository.ErrUserNotFound):
		log.Error("user missing in storage", sl.Err(err))
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("please sign in again"))
		return
	case err != nil:
		log.Error("failed to make prediction", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not make prediction"))
		return
	}

	log.Info("prediction served", slog.String("uid", user.UID),
		slog.Bool("fallback", result.Fallback))
	render.JSON(w, r, response.OKWithData(result))
}
