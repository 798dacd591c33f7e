// Package jwt выпускает и проверяет пары access/refresh токенов.
package jwt

import (
	"time"
)

// Maker описывает выпуск и разбор токенов.
type Maker interface {
	GenerateTokenPair(subject Subject) (access, refresh string, err error)
	ParseAccessToken(tokenStr string) (*CustomClaims, error)
	ParseRefreshToken(tokenStr string) (*CustomClaims, error)
}

// Subject: данные пользователя, которые попадают в токен.
type Subject struct {
	UserID      int64
	Email       string
	IsModerator bool
}

// MakerImpl подписывает токены HMAC-ключом.
type MakerImpl struct {
	secretKey  string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewJWTMaker создаёт MakerImpl на основе секретного ключа и времени жизни токенов.
func NewJWTMaker(secretKey string, accessTTL, refreshTTL time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey:  secretKey,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}
