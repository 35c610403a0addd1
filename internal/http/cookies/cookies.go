// Package cookies устанавливает и очищает cookie сессии.
// Токены хранятся в HTTP-only cookie и недоступны скриптам страницы.
package cookies

import (
	"net/http"
	"time"
)

// Имена cookie с токенами сессии.
const (
	AccessToken  = "accessToken"
	RefreshToken = "refreshToken"
)

// SetSession записывает пару токенов в cookie ответа.
func SetSession(w http.ResponseWriter, access, refresh string, secure bool, accessTTL, refreshTTL time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessToken,
		Value:    access,
		Path:     "/",
		MaxAge:   int(accessTTL.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshToken,
		Value:    refresh,
		Path:     "/",
		MaxAge:   int(refreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSession удаляет cookie сессии из ответа.
func ClearSession(w http.ResponseWriter, secure bool) {
	for _, name := range []string{AccessToken, RefreshToken} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
