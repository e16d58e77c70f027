// Package jwt реализует генерацию и парсинг пары JWT токенов (access + refresh)
// с пользовательскими claim полями.
package jwt

import (
	"time"
)

// Типы токенов, записываемые в claim "typ".
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Maker описывает интерфейс для генерации и парсинга JWT токенов.
type Maker interface {
	// GenerateToken выпускает токен указанного типа для пользователя.
	GenerateToken(userID int64, email, role, tokenType string) (string, error)
	// ParseToken проверяет подпись, срок действия и тип токена.
	ParseToken(tokenStr, tokenType string) (*CustomClaims, error)
}

// MakerImpl реализует интерфейс Maker с использованием секретного ключа
// и времени жизни токенов.
type MakerImpl struct {
	secretKey  string        // Секретный ключ для подписи токенов.
	accessTTL  time.Duration // Время жизни access токена.
	refreshTTL time.Duration // Время жизни refresh токена.
}

// NewJWTMaker создаёт новый экземпляр MakerImpl.
func NewJWTMaker(secretKey string, accessTTL, refreshTTL time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey:  secretKey,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (j *MakerImpl) ttl(tokenType string) time.Duration {
	if tokenType == TokenTypeRefresh {
		return j.refreshTTL
	}
	return j.accessTTL
}
