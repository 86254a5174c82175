// Package services содержит логику бизнес-уровня для входа пользователей
// и работы с сессиями.
package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/trial-gatekeeper/internal/lib/jwt"
	"github.com/magabrotheeeer/trial-gatekeeper/internal/models"
	"github.com/magabrotheeeer/trial-gatekeeper/internal/storage/repository"
)

// ErrSessionNotFound возвращается, когда сессия отозвана, истекла или токен
// не разбирается. Для клиента это всегда «войдите заново».
var ErrSessionNotFound = errors.New("session not found")

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя с нулевым счётчиком использования.
	CreateUser(ctx context.Context, email, role string) (*models.User, error)
	// GetUser возвращает пользователя по UID или ошибку, если не найден.
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	// GetUserByEmail возвращает пользователя по email или ошибку, если не найден.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// SessionStore описывает реестр активных сессий.
type SessionStore interface {
	Create(ctx context.Context, sessionID, userUID string, ttl time.Duration) error
	Check(ctx context.Context, sessionID string) (bool, error)
	Revoke(ctx context.Context, sessionID string) error
}

// RoleResolver выбирает роль для ранее неизвестного email.
// Это подменяемый шов: демонстрационная реализация смотрит на подстроку
// в адресе и не является механизмом безопасности.
type RoleResolver func(email string) string

// EmailRoleResolver — демонстрационное правило назначения ролей:
// адреса, содержащие подстроку "admin", получают роль администратора.
func EmailRoleResolver(email string) string {
	if strings.Contains(email, "admin") {
		return models.RoleAdmin
	}
	return models.RoleUser
}

// AuthService отвечает за вход по email, выдачу и разрешение сессий.
type AuthService struct {
	users       UserRepository
	sessions    SessionStore
	jwtMaker    jwt.Maker
	resolveRole RoleResolver
	sessionTTL  time.Duration
	log         *slog.Logger
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, sessions SessionStore, jwtMaker jwt.Maker,
	resolveRole RoleResolver, sessionTTL time.Duration, log *slog.Logger) *AuthService {
	return &AuthService{
		users:       users,
		sessions:    sessions,
		jwtMaker:    jwtMaker,
		resolveRole: resolveRole,
		sessionTTL:  sessionTTL,
		log:         log,
	}
}

// SignIn возвращает пользователя с данным email и токен новой сессии.
// Неизвестный email создаёт нового пользователя с ролью от RoleResolver,
// поэтому DuplicateEmail наружу не выходит: гонка двух первых входов
// разрешается повторным чтением.
func (s *AuthService) SignIn(ctx context.Context, email string) (*models.User, string, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		user, err = s.users.CreateUser(ctx, email, s.resolveRole(email))
		if errors.Is(err, repository.ErrDuplicateEmail) {
			user, err = s.users.GetUserByEmail(ctx, email)
		}
		if err == nil {
			s.log.Info("registered new user",
				slog.String("uid", user.UID), slog.String("role", user.Role))
		}
	}
	if err != nil {
		return nil, "", err
	}

	token, sessionID, err := s.jwtMaker.GenerateToken(user.UID)
	if err != nil {
		return nil, "", err
	}
	if err = s.sessions.Create(ctx, sessionID, user.UID, s.sessionTTL); err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// ResolveSession возвращает актуальную запись пользователя по токену сессии.
// Из токена берётся только ссылка (UID и ID сессии); роль и счётчики всегда
// перечитываются из хранилища, чтобы их изменения сразу вступали в силу.
func (s *AuthService) ResolveSession(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	alive, err := s.sessions.Check(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if !alive {
		return nil, ErrSessionNotFound
	}
	user, err := s.users.GetUser(ctx, claims.UserUID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrSessionNotFound
	}
	return user, err
}

// SignOut отзывает сессию. Токен с отозванным ID сессии больше не принимается,
// даже если его подпись ещё действительна.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return ErrSessionNotFound
	}
	return s.sessions.Revoke(ctx, claims.ID)
}
