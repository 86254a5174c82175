package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/magabrotheeeer/trial-gatekeeper/internal/models"
)

// uniqueViolation — код ошибки PostgreSQL для нарушения уникального индекса.
const uniqueViolation = "23505"

// CreateUser сохраняет нового пользователя и возвращает его UID.
// UID генерируется здесь, счётчик использования начинается с нуля,
// момент создания фиксирует база данных.
func (s *Storage) CreateUser(ctx context.Context, email, role string) (*models.User, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO users (uid, email, role)
			  VALUES ($1, $2, $3)
			  RETURNING uid, email, role, created_at, usage_count`
	u := &models.User{}
	err := s.DB.QueryRowContext(ctx, query, uuid.NewString(), email, role).
		Scan(&u.UID, &u.Email, &u.Role, &u.CreatedAt, &u.UsageCount)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, fmt.Errorf("%s: %w", op, ErrDuplicateEmail)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUser возвращает пользователя по его UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, role, created_at, usage_count
			  FROM users
			  WHERE uid = $1`
	u := &models.User{}
	err := s.DB.QueryRowContext(ctx, query, userUID).
		Scan(&u.UID, &u.Email, &u.Role, &u.CreatedAt, &u.UsageCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByEmail возвращает пользователя по его email.
// Email сравнивается как сохранён, с учётом регистра.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, role, created_at, usage_count
			  FROM users
			  WHERE email = $1`
	u := &models.User{}
	err := s.DB.QueryRowContext(ctx, query, email).
		Scan(&u.UID, &u.Email, &u.Role, &u.CreatedAt, &u.UsageCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// ListUsers возвращает всех пользователей в порядке регистрации.
func (s *Storage) ListUsers(ctx context.Context) ([]*models.User, error) {
	const op = "storage.ListUsers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, role, created_at, usage_count
			  FROM users
			  ORDER BY created_at`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.User
	for rows.Next() {
		var u models.User
		if err = rows.Scan(&u.UID, &u.Email, &u.Role, &u.CreatedAt, &u.UsageCount); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// IncrementUsage атомарно увеличивает счётчик использования ровно на единицу
// и возвращает обновлённого пользователя.
//
// Если guard не nil, инкремент выполняется только при usage_count < *guard.
// Проверка и запись происходят в одном UPDATE, поэтому два конкурирующих
// запроса одного пользователя не могут вместе пересечь границу лимита:
// проигравший получает ErrUsageGuard.
func (s *Storage) IncrementUsage(ctx context.Context, userUID string, guard *int) (*models.User, error) {
	const op = "storage.IncrementUsage"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	u := &models.User{}
	var err error
	if guard != nil {
		query := `UPDATE users
				  SET usage_count = usage_count + 1
				  WHERE uid = $1 AND usage_count < $2
				  RETURNING uid, email, role, created_at, usage_count`
		err = s.DB.QueryRowContext(ctx, query, userUID, *guard).
			Scan(&u.UID, &u.Email, &u.Role, &u.CreatedAt, &u.UsageCount)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrUsageGuard)
		}
	} else {
		query := `UPDATE users
				  SET usage_count = usage_count + 1
				  WHERE uid = $1
				  RETURNING uid, email, role, created_at, usage_count`
		err = s.DB.QueryRowContext(ctx, query, userUID).
			Scan(&u.UID, &u.Email, &u.Role, &u.CreatedAt, &u.UsageCount)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}
