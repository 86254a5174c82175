// Package services содержит бизнес-логику закрытого действия: запись
// использования и обращение к внешнему сервису генерации предсказаний.
package services

import (
	"context"
	"log/slog"

	"github.com/magabrotheeeer/trial-gatekeeper/internal/models"
)

// FallbackText возвращается вместо предсказания, когда внешний сервис
// недоступен. Использование при этом уже записано и не откатывается:
// попытка считается потраченной.
const FallbackText = "The prediction service is temporarily unavailable. " +
	"Please try again in a moment."

// Recorder описывает логику пробного периода, нужную закрытому действию.
type Recorder interface {
	// RecordAction записывает одно использование или возвращает отказ политики.
	RecordAction(ctx context.Context, userUID string) (*models.User, error)
	// Decide возвращает свежее решение политики для пользователя.
	Decide(ctx context.Context, user models.User) (models.Decision, error)
}

// Generator — внешний сервис генерации текста по запросу.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Result — итог выполнения закрытого действия.
type Result struct {
	Text     string          `json:"text"`     // Текст предсказания или заглушка
	Fallback bool            `json:"fallback"` // Истина, если внешний сервис отказал
	User     *models.User    `json:"user"`     // Обновлённая запись пользователя
	Trial    models.Decision `json:"trial"`    // Решение политики после записи
}

// PredictionService выполняет закрытое действие: сначала запись использования,
// затем вызов генератора.
type PredictionService struct {
	recorder  Recorder
	generator Generator
	log       *slog.Logger
}

// NewPredictionService создает новый экземпляр PredictionService.
func NewPredictionService(recorder Recorder, generator Generator, log *slog.Logger) *PredictionService {
	return &PredictionService{
		recorder:  recorder,
		generator: generator,
		log:       log,
	}
}

// Predict записывает использование и запрашивает предсказание у генератора.
// Отказ политики возвращается как есть, без обращения к генератору.
// Отказ генератора не является нарушением политики: ответ деградирует до
// заглушки, записанное использование остаётся в силе.
func (s *PredictionService) Predict(ctx context.Context, userUID, prompt string) (*Result, error) {
	user, err := s.recorder.RecordAction(ctx, userUID)
	if err != nil {
		return nil, err
	}

	result := &Result{User: user}
	result.Text, err = s.generator.Generate(ctx, prompt)
	if err != nil {
		s.log.Warn("generator failed, serving fallback", slog.Any("err", err))
		result.Text = FallbackText
		result.Fallback = true
	}

	result.Trial, err = s.recorder.Decide(ctx, *user)
	if err != nil {
		return nil, err
	}
	return result, nil
}
