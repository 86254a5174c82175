// Package trial реализует чистую функцию вычисления политики пробного периода.
//
// Evaluate — единственное место в системе, где принимается решение о допуске:
// запись предсказаний, баннер пользователя и административная статистика
// обязаны использовать именно её, чтобы отображаемый статус всегда совпадал
// с тем, что решит принудительное применение политики.
//
// Функции не читают часы и не имеют побочных эффектов: момент времени now
// передаётся явным аргументом.
package trial

import (
	"time"

	"github.com/magabrotheeeer/trial-gatekeeper/internal/models"
)

// Причины отказа, возвращаемые пользователю дословно.
const (
	ReasonLimitReached = "usage limit reached"
	ReasonTrialExpired = "trial period expired"
)

const hoursPerDay = 24

// Evaluate вычисляет решение политики для пользователя при конфигурации cfg
// в момент времени now.
//
// Администраторы всегда допускаются, Remaining для них равен nil.
// В режиме usage_based остаток считается в предсказаниях, в режиме
// time_based — в днях. Сравнение границы точное, без округления.
func Evaluate(user models.User, cfg models.TrialConfig, now time.Time) models.Decision {
	if user.IsAdmin() {
		return models.Decision{Permitted: true}
	}

	switch cfg.Mode {
	case models.ModeTimeBased:
		elapsedDays := now.Sub(user.CreatedAt).Hours() / hoursPerDay
		expired := elapsedDays > cfg.TrialDurationDays
		remaining := max(0, cfg.TrialDurationDays-elapsedDays)
		decision := models.Decision{
			Permitted: !expired,
			Remaining: &remaining,
			IsExpired: expired,
		}
		if expired {
			decision.Reason = ReasonTrialExpired
		}
		return decision
	default:
		// usage_based — режим по умолчанию
		remaining := max(0, float64(cfg.MaxActions-user.UsageCount))
		expired := remaining <= 0
		decision := models.Decision{
			Permitted: !expired,
			Remaining: &remaining,
			IsExpired: expired,
		}
		if expired {
			decision.Reason = ReasonLimitReached
		}
		return decision
	}
}

// Progress возвращает долю израсходованного пробного периода в диапазоне [0, 1].
// Значение предназначено только для отображения: принудительное применение
// политики использует Evaluate, а не ограниченный процент.
func Progress(user models.User, cfg models.TrialConfig, now time.Time) float64 {
	if user.IsAdmin() {
		return 0
	}

	var fraction float64
	switch cfg.Mode {
	case models.ModeTimeBased:
		if cfg.TrialDurationDays > 0 {
			elapsedDays := now.Sub(user.CreatedAt).Hours() / hoursPerDay
			fraction = elapsedDays / cfg.TrialDurationDays
		}
	default:
		if cfg.MaxActions > 0 {
			fraction = float64(user.UsageCount) / float64(cfg.MaxActions)
		}
	}

	return min(1, max(0, fraction))
}
