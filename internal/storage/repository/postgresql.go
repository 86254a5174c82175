// Package repository реализует хранилище данных на основе PostgreSQL
// для управления пользователями и единственной записью конфигурации
// пробного периода. Предоставляет методы создания и чтения пользователей,
// атомарного инкремента счётчика использования и замены конфигурации.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Ошибки хранилища, различаемые через errors.Is.
var (
	// ErrUserNotFound возвращается, когда пользователь не найден по UID или email.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateEmail возвращается при попытке создать пользователя с занятым email.
	ErrDuplicateEmail = errors.New("email already exists")
	// ErrUsageGuard возвращается, когда условный инкремент не обновил ни одной
	// строки: конкурирующий запрос уже исчерпал лимит.
	ErrUsageGuard = errors.New("usage limit guard rejected increment")
)

// Storage инкапсулирует соединение с базой данных PostgreSQL
// и реализует методы работы с пользователями и конфигурацией.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// CheckDatabaseReady проверяет готовность базы данных.
func CheckDatabaseReady(storage *Storage) error {
	var exists bool
	err := storage.DB.QueryRow(`SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'users'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table users missing or query error: %w", err)
	}
	return nil
}
