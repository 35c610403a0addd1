package models

import "time"

// Subscription представляет направленное ребро подписки: subscriber подписан на channel.
// Для пары (subscriber, channel) существует не более одного ребра.
type Subscription struct {
	ID            int64     // Идентификатор ребра
	SubscriberUID string    // UID подписчика
	ChannelUID    string    // UID канала
	CreatedAt     time.Time // Момент оформления подписки
}

// SubscriberInfo — подписчик канала вместе с краткой публичной сводкой профиля.
type SubscriberInfo struct {
	SubscriberUID string    `json:"subscriber_uid"`
	Username      string    `json:"username"`
	FullName      string    `json:"full_name"`
	AvatarURL     string    `json:"avatar_url"`
	SubscribedAt  time.Time `json:"subscribed_at"`
}

// ChannelInfo — канал, на который подписан пользователь, со сводкой профиля.
type ChannelInfo struct {
	ChannelUID   string    `json:"channel_uid"`
	Username     string    `json:"username"`
	FullName     string    `json:"full_name"`
	AvatarURL    string    `json:"avatar_url"`
	SubscribedAt time.Time `json:"subscribed_at"`
}

// NewSubscriberEvent — событие о новом подписчике, публикуемое в очередь
// уведомлений и потребляемое почтовым воркером.
type NewSubscriberEvent struct {
	ChannelEmail       string    `json:"channel_email"`
	ChannelUsername    string    `json:"channel_username"`
	SubscriberUsername string    `json:"subscriber_username"`
	SubscribedAt       time.Time `json:"subscribed_at"`
}
