package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/trial-gatekeeper/internal/models"
)

// GetTrialConfig возвращает единственную запись конфигурации пробного периода.
// Все поля читаются одним SELECT, поэтому вычисление политики всегда видит
// согласованную пару режим/пороги.
func (s *Storage) GetTrialConfig(ctx context.Context) (*models.TrialConfig, error) {
	const op = "storage.GetTrialConfig"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT mode, max_actions, trial_duration_days
			  FROM trial_config
			  WHERE id = 1`
	cfg := &models.TrialConfig{}
	err := s.DB.QueryRowContext(ctx, query).
		Scan(&cfg.Mode, &cfg.MaxActions, &cfg.TrialDurationDays)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return cfg, nil
}

// UpdateTrialConfig целиком заменяет конфигурацию пробного периода.
// Оба порога записываются всегда, независимо от активного режима, поэтому
// переключение режима не теряет настройку второго порога.
func (s *Storage) UpdateTrialConfig(ctx context.Context, cfg models.TrialConfig) (*models.TrialConfig, error) {
	const op = "storage.UpdateTrialConfig"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO trial_config (id, mode, max_actions, trial_duration_days)
			  VALUES (1, $1, $2, $3)
			  ON CONFLICT (id) DO UPDATE
			  SET mode = EXCLUDED.mode,
			      max_actions = EXCLUDED.max_actions,
			      trial_duration_days = EXCLUDED.trial_duration_days
			  RETURNING mode, max_actions, trial_duration_days`
	updated := &models.TrialConfig{}
	err := s.DB.QueryRowContext(ctx, query, cfg.Mode, cfg.MaxActions, cfg.TrialDurationDays).
		Scan(&updated.Mode, &updated.MaxActions, &updated.TrialDurationDays)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}
