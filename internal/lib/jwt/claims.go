// Package jwt реализует генерацию и парсинг сессионных JWT токенов.
//
// Токен — непрозрачная ссылка на сессию: в claims хранится только UID
// пользователя и идентификатор сессии (jti). Роль и счётчики в токен
// не кладутся намеренно — актуальная запись пользователя всегда
// перечитывается из хранилища при разрешении сессии.
package jwt

import (
	"time"
)

// Maker описывает интерфейс для генерации и парсинга сессионных токенов.
type Maker interface {
	// GenerateToken создаёт токен для пользователя и возвращает токен и ID сессии.
	GenerateToken(userUID string) (token, sessionID string, err error)
	// ParseToken возвращает *SessionClaims, если токен корректен.
	ParseToken(tokenStr string) (*SessionClaims, error)
}

// MakerImpl реализует интерфейс Maker с использованием секретного ключа
// и времени жизни токена (TTL).
type MakerImpl struct {
	secretKey string        // Секретный ключ для подписи токенов.
	tokenTTL  time.Duration // Время жизни токена.
}

// NewJWTMaker создаёт новый экземпляр MakerImpl на основе секретного ключа и TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}

// TokenTTL возвращает настроенное время жизни токена.
// Используется как TTL записи сессии в redis.
func (j *MakerImpl) TokenTTL() time.Duration {
	return j.tokenTTL
}
