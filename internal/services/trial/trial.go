// Package services содержит бизнес-логику пробного периода: запись
// использования, статус для пользователя и административные операции
// над конфигурацией и статистикой.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/magabrotheeeer/trial-gatekeeper/internal/events"
	"github.com/magabrotheeeer/trial-gatekeeper/internal/models"
	"github.com/magabrotheeeer/trial-gatekeeper/internal/storage/repository"
	"github.com/magabrotheeeer/trial-gatekeeper/internal/trial"
)

// Отказы политики — обычные значения управления потоком, а не сбои системы.
// Текст совпадает с причиной из вычислителя и показывается пользователю дословно.
var (
	// ErrLimitReached — исчерпан лимит предсказаний в режиме usage_based.
	ErrLimitReached = errors.New(trial.ReasonLimitReached)
	// ErrTrialExpired — истёк срок пробного периода в режиме time_based.
	ErrTrialExpired = errors.New(trial.ReasonTrialExpired)
	// ErrInvalidConfig — администратор передал неположительные пороги.
	ErrInvalidConfig = errors.New("invalid trial config")
)

var (
	actionsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trial_actions_recorded_total",
		Help: "Number of gated actions recorded.",
	})
	actionsDenied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trial_actions_denied_total",
		Help: "Number of gated actions denied by the trial policy.",
	}, []string{"reason"})
)

// Repository определяет методы хранилища, нужные логике пробного периода.
type Repository interface {
	// GetUser возвращает пользователя по UID.
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	// ListUsers возвращает всех пользователей.
	ListUsers(ctx context.Context) ([]*models.User, error)
	// IncrementUsage атомарно увеличивает счётчик, при guard != nil —
	// только пока счётчик меньше guard.
	IncrementUsage(ctx context.Context, userUID string, guard *int) (*models.User, error)
	// GetTrialConfig возвращает текущую конфигурацию одним чтением.
	GetTrialConfig(ctx context.Context) (*models.TrialConfig, error)
	// UpdateTrialConfig целиком заменяет конфигурацию.
	UpdateTrialConfig(ctx context.Context, cfg models.TrialConfig) (*models.TrialConfig, error)
}

// EventPublisher публикует аудиторские события.
type EventPublisher interface {
	Publish(routingKey string, message any) error
}

// TrialService реализует запись использования и административные операции.
// Все решения о допуске принимает trial.Evaluate — и здесь, и в статистике.
type TrialService struct {
	repo   Repository
	events EventPublisher
	log    *slog.Logger
	now    func() time.Time
}

// NewTrialService создает новый экземпляр TrialService.
func NewTrialService(repo Repository, events EventPublisher, log *slog.Logger) *TrialService {
	return &TrialService{
		repo:   repo,
		events: events,
		log:    log,
		now:    time.Now,
	}
}

// RecordAction записывает одно использование для пользователя, если политика
// это разрешает. Отказ не изменяет счётчик и возвращается как ErrLimitReached
// или ErrTrialExpired. Проверка и инкремент сериализуются условием в самом
// UPDATE, поэтому конкурирующие запросы не пересекают границу лимита вдвоём.
func (s *TrialService) RecordAction(ctx context.Context, userUID string) (*models.User, error) {
	cfg, err := s.repo.GetTrialConfig(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return nil, err
	}

	decision := trial.Evaluate(*user, *cfg, s.now())
	if !decision.Permitted {
		actionsDenied.WithLabelValues(decision.Reason).Inc()
		return nil, denialError(decision)
	}

	var guard *int
	if !user.IsAdmin() && cfg.Mode != models.ModeTimeBased {
		limit := cfg.MaxActions
		guard = &limit
	}
	updated, err := s.repo.IncrementUsage(ctx, userUID, guard)
	if errors.Is(err, repository.ErrUsageGuard) {
		// Конкурирующий запрос успел исчерпать лимит между Evaluate и UPDATE.
		actionsDenied.WithLabelValues(trial.ReasonLimitReached).Inc()
		return nil, ErrLimitReached
	}
	if err != nil {
		return nil, err
	}

	actionsRecorded.Inc()
	s.publish(events.RoutingKeyPredictionRecorded, map[string]any{
		"user_uid":    updated.UID,
		"usage_count": updated.UsageCount,
		"recorded_at": s.now().UTC(),
	})
	return updated, nil
}

// Decide возвращает свежее решение политики для уже загруженного пользователя.
func (s *TrialService) Decide(ctx context.Context, user models.User) (models.Decision, error) {
	cfg, err := s.repo.GetTrialConfig(ctx)
	if err != nil {
		return models.Decision{}, err
	}
	return trial.Evaluate(user, *cfg, s.now()), nil
}

// Status возвращает пользователя, решение политики и долю израсходованного
// пробного периода для отображения баннера и панели.
func (s *TrialService) Status(ctx context.Context, userUID string) (*models.User, models.Decision, float64, error) {
	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return nil, models.Decision{}, 0, err
	}
	cfg, err := s.repo.GetTrialConfig(ctx)
	if err != nil {
		return nil, models.Decision{}, 0, err
	}
	now := s.now()
	return user, trial.Evaluate(*user, *cfg, now), trial.Progress(*user, *cfg, now), nil
}

// GetConfig возвращает текущую конфигурацию пробного периода.
func (s *TrialService) GetConfig(ctx context.Context) (*models.TrialConfig, error) {
	return s.repo.GetTrialConfig(ctx)
}

// SetConfig заменяет конфигурацию целиком. Неположительные пороги отклоняются
// до записи, прежняя конфигурация остаётся действующей. Новая конфигурация
// вступает в силу немедленно для всех пользователей, включая тех, кто уже
// в пробном периоде.
func (s *TrialService) SetConfig(ctx context.Context, req models.DummyTrialConfig) (*models.TrialConfig, error) {
	if req.MaxActions <= 0 {
		return nil, fmt.Errorf("%w: max_actions must be positive", ErrInvalidConfig)
	}
	if req.TrialDurationDays <= 0 {
		return nil, fmt.Errorf("%w: trial_duration_days must be positive", ErrInvalidConfig)
	}
	if req.Mode != models.ModeUsageBased && req.Mode != models.ModeTimeBased {
		return nil, fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, req.Mode)
	}

	updated, err := s.repo.UpdateTrialConfig(ctx, models.TrialConfig{
		Mode:              req.Mode,
		MaxActions:        req.MaxActions,
		TrialDurationDays: req.TrialDurationDays,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("trial config updated", slog.String("mode", updated.Mode),
		slog.Int("max_actions", updated.MaxActions),
		slog.Float64("trial_duration_days", updated.TrialDurationDays))
	s.publish(events.RoutingKeyConfigChanged, updated)
	return updated, nil
}

// Stats пересчитывает статистику по всем пользователям с текущей
// конфигурацией. Активность определяется тем же trial.Evaluate, что и запись
// использования, поэтому показанные числа всегда согласованы с допуском.
func (s *TrialService) Stats(ctx context.Context) (*models.AppStats, error) {
	cfg, err := s.repo.GetTrialConfig(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	stats := &models.AppStats{TotalUsers: len(users)}
	for _, u := range users {
		stats.TotalActions += u.UsageCount
		if trial.Evaluate(*u, *cfg, now).Permitted {
			stats.ActiveTrials++
		}
	}
	return stats, nil
}

// ListUsers возвращает всех пользователей для административной таблицы.
func (s *TrialService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.repo.ListUsers(ctx)
}

func (s *TrialService) publish(routingKey string, message any) {
	if err := s.events.Publish(routingKey, message); err != nil {
		s.log.Warn("failed to publish event", slog.String("routing_key", routingKey),
			slog.Any("err", err))
	}
}

func denialError(d models.Decision) error {
	if d.Reason == trial.ReasonTrialExpired {
		return ErrTrialExpired
	}
	return ErrLimitReached
}
