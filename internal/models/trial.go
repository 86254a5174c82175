// Package models содержит доменные структуры пробного периода:
// глобальную конфигурацию, решение о допуске и агрегированную статистику.
package models

// Режимы пробного периода.
const (
	// ModeUsageBased ограничивает пробный период количеством предсказаний.
	ModeUsageBased = "usage_based"
	// ModeTimeBased ограничивает пробный период количеством дней с момента регистрации.
	ModeTimeBased = "time_based"
)

// TrialConfig описывает глобальную политику пробного периода.
// Существует ровно одна запись; оба порога хранятся всегда,
// чтобы переключение режима не теряло настройку второго режима.
type TrialConfig struct {
	Mode              string  `json:"mode"`                // Активный режим, usage_based или time_based
	MaxActions        int     `json:"max_actions"`         // Лимит предсказаний в режиме usage_based
	TrialDurationDays float64 `json:"trial_duration_days"` // Длительность в днях в режиме time_based
}

// Decision — результат вычисления политики для конкретного пользователя.
// Remaining равен nil для администраторов; в режиме usage_based это остаток
// предсказаний, в режиме time_based — остаток дней.
type Decision struct {
	Permitted bool     `json:"permitted"`
	Remaining *float64 `json:"remaining,omitempty"`
	IsExpired bool     `json:"is_expired"`
	Reason    string   `json:"reason,omitempty"`
}

// AppStats — производная статистика по всем пользователям.
// Никогда не сохраняется, пересчитывается по запросу.
type AppStats struct {
	TotalUsers   int `json:"total_users"`
	ActiveTrials int `json:"active_trials"`
	TotalActions int `json:"total_actions"`
}

// DummyTrialConfig используется для приёма новой конфигурации из JSON-запроса
// администратора. Оба порога обязательны независимо от выбранного режима.
type DummyTrialConfig struct {
	Mode              string  `json:"mode" validate:"required,oneof=usage_based time_based"` // Режим
	MaxActions        int     `json:"max_actions" validate:"required"`                       // Лимит предсказаний (>0)
	TrialDurationDays float64 `json:"trial_duration_days" validate:"required"`               // Длительность в днях (>0)
}

// DummyPrompt используется для приёма текста запроса к модели из JSON-запроса.
type DummyPrompt struct {
	Prompt string `json:"prompt" validate:"required"` // Текст запроса к модели
}
