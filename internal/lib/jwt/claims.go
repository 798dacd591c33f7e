package jwt

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// ErrWrongTokenType возвращается, если вместо access-токена пришёл refresh и наоборот.
var ErrWrongTokenType = errors.New("wrong token type")

// CustomClaims описывает пользовательские данные, хранящиеся в JWT.
type CustomClaims struct {
	UserID      int64  `json:"user_id"`
	Email       string `json:"email"`
	IsModerator bool   `json:"is_moderator"`
	TokenType   string `json:"token_type"`
	jwt.RegisteredClaims
}

// GenerateTokenPair выпускает access и refresh токены для пользователя.
func (j *MakerImpl) GenerateTokenPair(subject Subject) (string, string, error) {
	const op = "jwt.GenerateTokenPair"
	access, err := j.sign(subject, TokenTypeAccess)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	refresh, err := j.sign(subject, TokenTypeRefresh)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	return access, refresh, nil
}

func (j *MakerImpl) sign(subject Subject, tokenType string) (string, error) {
	ttl := j.accessTTL
	if tokenType == TokenTypeRefresh {
		ttl = j.refreshTTL
	}
	now := j.now()
	claims := CustomClaims{
		UserID:      subject.UserID,
		Email:       subject.Email,
		IsModerator: subject.IsModerator,
		TokenType:   tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(subject.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secretKey))
}

// ParseAccessToken проверяет подпись и срок действия access-токена.
func (j *MakerImpl) ParseAccessToken(tokenStr string) (*CustomClaims, error) {
	const op = "jwt.ParseAccessToken"
	claims, err := j.parse(tokenStr, TokenTypeAccess)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return claims, nil
}

// ParseRefreshToken проверяет подпись и срок действия refresh-токена.
func (j *MakerImpl) ParseRefreshToken(tokenStr string) (*CustomClaims, error) {
	const op = "jwt.ParseRefreshToken"
	claims, err := j.parse(tokenStr, TokenTypeRefresh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return claims, nil
}

func (j *MakerImpl) parse(tokenStr, tokenType string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(j.secretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(j.now))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.TokenType != tokenType {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}
