// Package models содержит доменную модель пользователя системы,
// включающую учётные данные, роль и счётчик использования.
// Структуры используются в бизнес‑логике и при работе с хранилищем.
package models

import "time"

// Роли пользователей. Администраторы освобождены от всех проверок
// пробного периода.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User представляет зарегистрированного пользователя системы.
type User struct {
	UID        string    `json:"uid"`         // Уникальный идентификатор пользователя
	Email      string    `json:"email"`       // Электронная почта (уникальная)
	Role       string    `json:"role"`        // Роль пользователя, admin или user
	CreatedAt  time.Time `json:"created_at"`  // Момент создания, неизменяемый
	UsageCount int       `json:"usage_count"` // Количество выполненных предсказаний, только растёт
}

// IsAdmin сообщает, является ли пользователь администратором.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// DummyLogin используется для приёма данных входа из JSON-запроса.
type DummyLogin struct {
	Email string `json:"email" validate:"required,email"` // Электронная почта пользователя
}
