// Package jwt реализует генерацию и парсинг JWT токенов сессии.
//
// AccessClaims расширяет стандартные claims JWT публичными данными пользователя,
// RefreshClaims несет только UID пользователя.
package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessClaims описывает данные, хранящиеся в access токене.
type AccessClaims struct {
	UserUID              string `json:"user_uid"`  // Уникальный идентификатор пользователя
	Email                string `json:"email"`     // Электронная почта
	Username             string `json:"username"`  // Имя пользователя
	FullName             string `json:"full_name"` // Полное имя
	jwt.RegisteredClaims        // Встроенные стандартные claims JWT (ExpiresAt, IssuedAt и пр.)
}

// RefreshClaims описывает данные, хранящиеся в refresh токене.
// Намеренно минимальны: только UID пользователя.
type RefreshClaims struct {
	UserUID string `json:"user_uid"`
	jwt.RegisteredClaims
}

// GenerateAccessToken создает access токен с публичными данными пользователя,
// подписывая его секретным ключом access токенов.
func (j *MakerImpl) GenerateAccessToken(userUID, email, username, fullName string) (string, error) {
	claims := AccessClaims{
		UserUID:  userUID,
		Email:    email,
		Username: username,
		FullName: fullName,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(j.accessTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.accessSecret))
}

// GenerateRefreshToken создает refresh токен, несущий только UID пользователя.
//
// Каждый токен получает уникальный jti: ротация опирается на побайтовое
// сравнение с хранимым значением, поэтому два выпуска для одного
// пользователя обязаны давать разные строки даже в пределах одной секунды.
func (j *MakerImpl) GenerateRefreshToken(userUID string) (string, error) {
	claims := RefreshClaims{
		UserUID: userUID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(j.refreshTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.refreshSecret))
}

// ParseAccessToken парсит access токен, проверяет его подпись и срок действия,
// возвращает AccessClaims, если токен корректен.
func (j *MakerImpl) ParseAccessToken(tokenStr string) (*AccessClaims, error) {
	const op = "jwt.ParseAccessToken"
	token, err := jwt.ParseWithClaims(tokenStr, &AccessClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(j.accessSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: invalid token", op)
	}
	return claims, nil
}

// ParseRefreshToken парсит refresh токен, проверяет его подпись и срок действия,
// возвращает RefreshClaims, если токен корректен.
func (j *MakerImpl) ParseRefreshToken(tokenStr string) (*RefreshClaims, error) {
	const op = "jwt.ParseRefreshToken"
	token, err := jwt.ParseWithClaims(tokenStr, &RefreshClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(j.refreshSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*RefreshClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: invalid token", op)
	}
	return claims, nil
}
