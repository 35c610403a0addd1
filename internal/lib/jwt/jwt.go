// Package jwt реализует генерацию и парсинг JWT токенов сессии.
//
// Maker определяет интерфейс для выпуска и проверки пары токенов:
// короткоживущего access токена и долгоживущего refresh токена.
// MakerImpl — конкретная реализация с отдельными секретами и TTL для каждого вида.
package jwt

import (
	"time"
)

// Maker описывает интерфейс для генерации и парсинга токенов сессии.
//
// Access токен несет публичные данные пользователя, refresh токен — только его UID.
type Maker interface {
	// GenerateAccessToken выпускает короткоживущий access токен.
	GenerateAccessToken(userUID, email, username, fullName string) (string, error)
	// GenerateRefreshToken выпускает долгоживущий refresh токен.
	GenerateRefreshToken(userUID string) (string, error)
	// ParseAccessToken проверяет подпись и срок действия access токена.
	ParseAccessToken(tokenStr string) (*AccessClaims, error)
	// ParseRefreshToken проверяет подпись и срок действия refresh токена.
	ParseRefreshToken(tokenStr string) (*RefreshClaims, error)
}

// MakerImpl реализует интерфейс Maker. Секреты и время жизни
// задаются конфигурацией и различаются для access и refresh токенов.
type MakerImpl struct {
	accessSecret  string        // Секретный ключ для подписи access токенов.
	refreshSecret string        // Секретный ключ для подписи refresh токенов.
	accessTTL     time.Duration // Время жизни access токена.
	refreshTTL    time.Duration // Время жизни refresh токена.
}

// NewMaker создаёт новый экземпляр MakerImpl на основе секретных ключей и TTL.
func NewMaker(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *MakerImpl {
	return &MakerImpl{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}
