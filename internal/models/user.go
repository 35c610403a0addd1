// Package models содержит доменные модели платформы видеохостинга:
// пользователя-канала и подписку между пользователями.
// Структуры используются в бизнес‑логике и при работе с хранилищем.
package models

import "time"

// User представляет зарегистрированного пользователя системы.
//
// Username и Email уникальны и хранятся в нижнем регистре. PasswordHash —
// bcrypt-хэш, пароль в открытом виде не хранится. RefreshToken держит
// не более одного действующего значения: выпуск нового инвалидирует прежнее.
type User struct {
	UID           string    // Уникальный идентификатор пользователя
	Username      string    // Имя пользователя (уникальное, в нижнем регистре)
	Email         string    // Электронная почта (уникальная, в нижнем регистре)
	FullName      string    // Полное имя
	PasswordHash  string    // Хэш пароля пользователя
	RefreshToken  *string   // Текущий refresh токен сессии, nil — сессии нет
	AvatarURL     string    // Ссылка на аватар во внешнем медиахранилище
	CoverImageURL *string   // Ссылка на обложку канала (опционально)
	CreatedAt     time.Time // Дата регистрации
}

// PublicUser — проекция пользователя без секретных полей.
// Используется во всех ответах наружу: хэш пароля и refresh токен
// никогда не попадают в профильные выборки.
type PublicUser struct {
	UID           string  `json:"uid"`
	Username      string  `json:"username"`
	Email         string  `json:"email"`
	FullName      string  `json:"full_name"`
	AvatarURL     string  `json:"avatar_url"`
	CoverImageURL *string `json:"cover_image_url,omitempty"`
}

// Public возвращает публичную проекцию пользователя.
func (u *User) Public() PublicUser {
	return PublicUser{
		UID:           u.UID,
		Username:      u.Username,
		Email:         u.Email,
		FullName:      u.FullName,
		AvatarURL:     u.AvatarURL,
		CoverImageURL: u.CoverImageURL,
	}
}

// ChannelProfile — публичный профиль канала с производными полями:
// количеством подписчиков, количеством подписок самого пользователя
// и признаком подписки смотрящего.
type ChannelProfile struct {
	PublicUser
	SubscribersCount  int  `json:"subscribers_count"`
	SubscribedToCount int  `json:"subscribed_to_count"`
	IsSubscribed      bool `json:"is_subscribed"`
}
