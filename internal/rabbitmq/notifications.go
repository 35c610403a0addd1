package rabbitmq

import (
	"github.com/streadway/amqp"

	"github.com/grmlvv/video-hosting/internal/models"
)

// NotificationPublisher публикует события графа подписок в обменник уведомлений.
type NotificationPublisher struct {
	ch *amqp.Channel
}

// NewNotificationPublisher создает издателя поверх открытого канала.
func NewNotificationPublisher(ch *amqp.Channel) *NotificationPublisher {
	return &NotificationPublisher{ch: ch}
}

// PublishNewSubscriber отправляет событие о новом подписчике.
func (p *NotificationPublisher) PublishNewSubscriber(event models.NewSubscriberEvent) error {
	return PublishMessage(p.ch, NotificationsExchange, NewSubscriberRoutingKey, event)
}
