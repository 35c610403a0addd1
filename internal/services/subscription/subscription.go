// Package subscription содержит бизнес-логику графа подписок: переключение
// ребра подписчик→канал и производные выборки (списки, счетчики, профиль
// канала с признаком подписки смотрящего).
package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/grmlvv/video-hosting/internal/apperr"
	"github.com/grmlvv/video-hosting/internal/lib/sl"
	"github.com/grmlvv/video-hosting/internal/models"
	"github.com/grmlvv/video-hosting/internal/storage"
)

// Состояния, возвращаемые переключением подписки.
const (
	StateSubscribed   = "subscribed"
	StateUnsubscribed = "unsubscribed"
)

const countsCacheTTL = 5 * time.Minute

// SubscriptionRepository определяет методы для работы с ребрами подписок в хранилище.
type SubscriptionRepository interface {
	// FindEdge возвращает ребро пары или storage.ErrEdgeNotFound.
	FindEdge(ctx context.Context, subscriberUID, channelUID string) (*models.Subscription, error)
	// CreateEdge вставляет ребро; дубликат — storage.ErrEdgeExists.
	CreateEdge(ctx context.Context, subscriberUID, channelUID string) (int64, error)
	// DeleteEdge удаляет ребро по ID.
	DeleteEdge(ctx context.Context, id int64) error
	// ListChannelSubscribers возвращает подписчиков канала со сводками профилей.
	ListChannelSubscribers(ctx context.Context, channelUID string) ([]*models.SubscriberInfo, error)
	// ListSubscribedChannels возвращает каналы пользователя со сводками профилей.
	ListSubscribedChannels(ctx context.Context, subscriberUID string) ([]*models.ChannelInfo, error)
	// GetChannelCounts возвращает счетчики подписчиков и подписок.
	GetChannelCounts(ctx context.Context, userUID string) (int, int, error)
}

// UserResolver разрешает идентификаторы пользователей через хранилище учетных записей.
type UserResolver interface {
	GetUserByUID(ctx context.Context, userUID string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// Cache описывает методы для кэширования производных данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// EventPublisher публикует событие о новом подписчике в очередь уведомлений.
type EventPublisher interface {
	PublishNewSubscriber(event models.NewSubscriberEvent) error
}

// channelCounts — кешируемые счетчики канала.
type channelCounts struct {
	Subscribers  int `json:"subscribers"`
	SubscribedTo int `json:"subscribed_to"`
}

// SubscriptionService реализует бизнес-логику графа подписок.
type SubscriptionService struct {
	repo      SubscriptionRepository
	users     UserResolver
	cache     Cache
	events    EventPublisher
	allowSelf bool
	log       *slog.Logger
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
// events может быть nil, тогда уведомления не публикуются.
func NewSubscriptionService(repo SubscriptionRepository, users UserResolver, cache Cache,
	events EventPublisher, allowSelf bool, log *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		repo:      repo,
		users:     users,
		cache:     cache,
		events:    events,
		allowSelf: allowSelf,
		log:       log,
	}
}

// Toggle переключает подписку пользователя на канал: удаляет ребро, если оно
// есть, и создает, если нет. Конкурентный дубль разрешается уникальным
// ограничением хранилища и отдается как уже достигнутое состояние,
// а не как ошибка.
func (s *SubscriptionService) Toggle(ctx context.Context, subscriberUID, channelUID string) (string, error) {
	channel, err := s.users.GetUserByUID(ctx, channelUID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return "", apperr.Validation("channel is required")
		}
		return "", apperr.Internal("failed to resolve channel")
	}

	if !s.allowSelf && subscriberUID == channelUID {
		return "", apperr.Validation("cannot subscribe to own channel")
	}

	edge, err := s.repo.FindEdge(ctx, subscriberUID, channelUID)
	switch {
	case err == nil:
		if err := s.repo.DeleteEdge(ctx, edge.ID); err != nil && !errors.Is(err, storage.ErrEdgeNotFound) {
			return "", apperr.Internal("failed to unsubscribe")
		}
		s.invalidateCounts(channelUID, subscriberUID)
		s.log.Info("unsubscribed", slog.String("subscriber", subscriberUID), slog.String("channel", channelUID))
		return StateUnsubscribed, nil

	case errors.Is(err, storage.ErrEdgeNotFound):
		if _, err := s.repo.CreateEdge(ctx, subscriberUID, channelUID); err != nil {
			if errors.Is(err, storage.ErrEdgeExists) {
				// Конкурентный запрос успел первым: состояние уже достигнуто.
				return StateSubscribed, nil
			}
			return "", apperr.Internal("failed to subscribe")
		}
		s.invalidateCounts(channelUID, subscriberUID)
		s.publishNewSubscriber(ctx, subscriberUID, channel)
		s.log.Info("subscribed", slog.String("subscriber", subscriberUID), slog.String("channel", channelUID))
		return StateSubscribed, nil

	default:
		return "", apperr.Internal("failed to look up subscription")
	}
}

// ChannelSubscribers возвращает подписчиков канала со сводками профилей.
// Пустой результат — не ошибка, а нулевая последовательность.
func (s *SubscriptionService) ChannelSubscribers(ctx context.Context, channelUID string) ([]*models.SubscriberInfo, error) {
	if _, err := s.users.GetUserByUID(ctx, channelUID); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, apperr.NotFound("channel does not exist")
		}
		return nil, apperr.Internal("failed to resolve channel")
	}

	subscribers, err := s.repo.ListChannelSubscribers(ctx, channelUID)
	if err != nil {
		return nil, apperr.Internal("failed to list subscribers")
	}
	return subscribers, nil
}

// SubscribedChannels возвращает каналы, на которые подписан пользователь.
func (s *SubscriptionService) SubscribedChannels(ctx context.Context, subscriberUID string) ([]*models.ChannelInfo, error) {
	if _, err := s.users.GetUserByUID(ctx, subscriberUID); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, apperr.NotFound("subscriber does not exist")
		}
		return nil, apperr.Internal("failed to resolve subscriber")
	}

	channels, err := s.repo.ListSubscribedChannels(ctx, subscriberUID)
	if err != nil {
		return nil, apperr.Internal("failed to list subscribed channels")
	}
	return channels, nil
}

// ChannelProfile собирает публичный профиль канала по username с производными
// полями: счетчиками (с кешированием) и признаком подписки смотрящего.
// viewerUID пуст для неаутентифицированного смотрящего — IsSubscribed тогда false.
func (s *SubscriptionService) ChannelProfile(ctx context.Context, username, viewerUID string) (*models.ChannelProfile, error) {
	if username == "" {
		return nil, apperr.Validation("username is required")
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, apperr.NotFound("channel does not exist")
		}
		return nil, apperr.Internal("failed to resolve channel")
	}

	counts, err := s.getCounts(ctx, user.UID)
	if err != nil {
		return nil, apperr.Internal("failed to count subscriptions")
	}

	isSubscribed := false
	if viewerUID != "" {
		_, err := s.repo.FindEdge(ctx, viewerUID, user.UID)
		switch {
		case err == nil:
			isSubscribed = true
		case errors.Is(err, storage.ErrEdgeNotFound):
		default:
			return nil, apperr.Internal("failed to look up subscription")
		}
	}

	return &models.ChannelProfile{
		PublicUser:        user.Public(),
		SubscribersCount:  counts.Subscribers,
		SubscribedToCount: counts.SubscribedTo,
		IsSubscribed:      isSubscribed,
	}, nil
}

func countsCacheKey(userUID string) string {
	return fmt.Sprintf("channel:counts:%s", userUID)
}

// getCounts читает счетчики канала из кеша, при промахе — из хранилища.
func (s *SubscriptionService) getCounts(ctx context.Context, userUID string) (*channelCounts, error) {
	var cached channelCounts
	key := countsCacheKey(userUID)
	found, err := s.cache.Get(key, &cached)
	if err != nil {
		s.log.Warn("failed to read counts from cache", slog.String("key", key), sl.Err(err))
	}
	if found && err == nil {
		return &cached, nil
	}

	subscribers, subscribedTo, err := s.repo.GetChannelCounts(ctx, userUID)
	if err != nil {
		return nil, err
	}
	counts := &channelCounts{Subscribers: subscribers, SubscribedTo: subscribedTo}

	if err := s.cache.Set(key, counts, countsCacheTTL); err != nil {
		s.log.Warn("failed to cache counts", slog.String("key", key), sl.Err(err))
	}
	return counts, nil
}

// invalidateCounts сбрасывает кешированные счетчики обеих сторон ребра.
func (s *SubscriptionService) invalidateCounts(channelUID, subscriberUID string) {
	for _, uid := range []string{channelUID, subscriberUID} {
		key := countsCacheKey(uid)
		if err := s.cache.Invalidate(key); err != nil {
			s.log.Warn("failed to invalidate counts cache", slog.String("key", key), sl.Err(err))
		}
	}
}

// publishNewSubscriber отправляет событие о новом подписчике в очередь
// уведомлений. Сбой публикации не ломает подписку, только логируется.
func (s *SubscriptionService) publishNewSubscriber(ctx context.Context, subscriberUID string, channel *models.User) {
	if s.events == nil {
		return
	}
	subscriber, err := s.users.GetUserByUID(ctx, subscriberUID)
	if err != nil {
		s.log.Warn("failed to resolve subscriber for notification", sl.Err(err))
		return
	}
	event := models.NewSubscriberEvent{
		ChannelEmail:       channel.Email,
		ChannelUsername:    channel.Username,
		SubscriberUsername: subscriber.Username,
		SubscribedAt:       time.Now().UTC(),
	}
	if err := s.events.PublishNewSubscriber(event); err != nil {
		s.log.Warn("failed to publish new subscriber event", sl.Err(err))
	}
}
