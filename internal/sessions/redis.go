// Package sessions реализует реестр активных сессий на основе redis.
//
// Запись с ключом session:<id> существует, пока сессия жива; выход из
// системы удаляет запись, после чего подписанный токен с этим ID сессии
// перестаёт приниматься. TTL записи совпадает со сроком жизни токена.
package sessions

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/magabrotheeeer/trial-gatekeeper/internal/config"
)

// Store хранит активные сессии в redis.
type Store struct {
	Db *redis.Client
}

// InitServer подключается к redis и возвращает готовый Store.
func InitServer(ctx context.Context, cfg config.RedisConnection) (*Store, error) {
	const op = "sessions.InitServer"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Store{Db: db}, nil
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

// Create регистрирует новую сессию пользователя с временем жизни ttl.
func (s *Store) Create(ctx context.Context, sessionID, userUID string, ttl time.Duration) error {
	const op = "sessions.Create"
	if err := s.Db.Set(ctx, sessionKey(sessionID), userUID, ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Check сообщает, жива ли сессия с данным ID.
func (s *Store) Check(ctx context.Context, sessionID string) (bool, error) {
	const op = "sessions.Check"
	err := s.Db.Get(ctx, sessionKey(sessionID)).Err()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// Revoke удаляет сессию. Повторный вызов для уже удалённой сессии не ошибка.
func (s *Store) Revoke(ctx context.Context, sessionID string) error {
	const op = "sessions.Revoke"
	if err := s.Db.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
