package jwt

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CustomClaims описывает пользовательские данные, хранящиеся в JWT.
type CustomClaims struct {
	UserID               int64  `json:"user_id"` // Идентификатор пользователя
	Email                string `json:"email"`   // Email пользователя
	Role                 string `json:"role"`    // Роль пользователя
	TokenType            string `json:"typ"`     // access или refresh
	jwt.RegisteredClaims        // Встроенные стандартные claims JWT (ExpiresAt, IssuedAt и пр.)
}

// GenerateToken создает JWT токен заданного типа, подписывая его секретным ключом.
func (j *MakerImpl) GenerateToken(userID int64, email, role, tokenType string) (string, error) {
	const op = "jwt.GenerateToken"
	if tokenType != TokenTypeAccess && tokenType != TokenTypeRefresh {
		return "", fmt.Errorf("%s: unknown token type %q", op, tokenType)
	}
	now := time.Now()
	claims := CustomClaims{
		UserID:    userID,
		Email:     email,
		Role:      role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl(tokenType))),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secretKey))
}

// ParseToken парсит JWT токен, проверяет его подпись, валидность и тип,
// возвращает CustomClaims, если токен корректен.
func (j *MakerImpl) ParseToken(tokenStr, tokenType string) (*CustomClaims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(j.secretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: invalid token", op)
	}
	if claims.TokenType != tokenType {
		return nil, fmt.Errorf("%s: unexpected token type %q", op, claims.TokenType)
	}
	return claims, nil
}
