package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/grmlvv/video-hosting/internal/models"
)

// FindEdge возвращает ребро подписки для пары (subscriber, channel)
// или ErrEdgeNotFound, если его нет.
func (s *Storage) FindEdge(ctx context.Context, subscriberUID, channelUID string) (*models.Subscription, error) {
	const op = "storage.FindEdge"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, subscriber_uid, channel_uid, created_at
			  FROM subscriptions
			  WHERE subscriber_uid = $1 AND channel_uid = $2`
	var edge models.Subscription
	row := s.DB.QueryRowContext(ctx, query, subscriberUID, channelUID)
	if err := row.Scan(&edge.ID, &edge.SubscriberUID, &edge.ChannelUID, &edge.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrEdgeNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &edge, nil
}

// CreateEdge вставляет новое ребро подписки и возвращает его ID.
// Уникальное ограничение на пару (subscriber, channel) — арбитр конкурентных
// двойных подписок: дубликат возвращается как ErrEdgeExists.
func (s *Storage) CreateEdge(ctx context.Context, subscriberUID, channelUID string) (int64, error) {
	const op = "storage.CreateEdge"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO subscriptions (subscriber_uid, channel_uid)
			  VALUES ($1, $2)
			  RETURNING id`
	var newID int64
	err := s.DB.QueryRowContext(ctx, query, subscriberUID, channelUID).Scan(&newID)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%s: %w", op, ErrEdgeExists)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// DeleteEdge удаляет ребро подписки по ID.
func (s *Storage) DeleteEdge(ctx context.Context, id int64) error {
	const op = "storage.DeleteEdge"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM subscriptions WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrEdgeNotFound)
	}
	return nil
}

// ListChannelSubscribers возвращает подписчиков канала, присоединяя
// публичную сводку профиля каждого подписчика. Порядок — по дате подписки.
func (s *Storage) ListChannelSubscribers(ctx context.Context, channelUID string) ([]*models.SubscriberInfo, error) {
	const op = "storage.ListChannelSubscribers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT sub.subscriber_uid, u.username, u.full_name, u.avatar_url, sub.created_at
			  FROM subscriptions sub
			  JOIN users u ON u.uid = sub.subscriber_uid
			  WHERE sub.channel_uid = $1
			  ORDER BY sub.created_at, sub.id`
	rows, err := s.DB.QueryContext(ctx, query, channelUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.SubscriberInfo
	for rows.Next() {
		var item models.SubscriberInfo
		if err := rows.Scan(&item.SubscriberUID, &item.Username, &item.FullName,
			&item.AvatarURL, &item.SubscribedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListSubscribedChannels возвращает каналы, на которые подписан пользователь,
// присоединяя публичную сводку профиля каждого канала.
func (s *Storage) ListSubscribedChannels(ctx context.Context, subscriberUID string) ([]*models.ChannelInfo, error) {
	const op = "storage.ListSubscribedChannels"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT sub.channel_uid, u.username, u.full_name, u.avatar_url, sub.created_at
			  FROM subscriptions sub
			  JOIN users u ON u.uid = sub.channel_uid
			  WHERE sub.subscriber_uid = $1
			  ORDER BY sub.created_at, sub.id`
	rows, err := s.DB.QueryContext(ctx, query, subscriberUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.ChannelInfo
	for rows.Next() {
		var item models.ChannelInfo
		if err := rows.Scan(&item.ChannelUID, &item.Username, &item.FullName,
			&item.AvatarURL, &item.SubscribedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetChannelCounts подсчитывает количество подписчиков канала и количество
// подписок самого пользователя одним запросом.
func (s *Storage) GetChannelCounts(ctx context.Context, userUID string) (subscribers int, subscribedTo int, err error) {
	const op = "storage.GetChannelCounts"
	select {
	case <-ctx.Done():
		return 0, 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT
			      (SELECT count(*) FROM subscriptions WHERE channel_uid = $1),
			      (SELECT count(*) FROM subscriptions WHERE subscriber_uid = $1)`
	row := s.DB.QueryRowContext(ctx, query, userUID)
	if err := row.Scan(&subscribers, &subscribedTo); err != nil {
		return 0, 0, fmt.Errorf("%s: %w", op, err)
	}
	return subscribers, subscribedTo, nil
}
