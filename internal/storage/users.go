package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/grmlvv/video-hosting/internal/models"
)

// CreateUser сохраняет нового пользователя в базу данных и возвращает его UID.
// Нарушение уникальности username или email возвращается как ErrUserExists.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	query := `INSERT INTO users (username, email, full_name, password_hash, avatar_url, cover_image_url)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Username, user.Email, user.FullName, user.PasswordHash,
		user.AvatarURL, user.CoverImageURL).Scan(&newUID); err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("%s: %w", op, ErrUserExists)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetUserByUID возвращает пользователя по его UID.
func (s *Storage) GetUserByUID(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUserByUID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, username, email, full_name, password_hash, refresh_token,
			      avatar_url, cover_image_url, created_at
			  FROM users
			  WHERE uid = $1`
	return s.scanUser(s.DB.QueryRowContext(ctx, query, userUID), op)
}

// GetUserByUsername возвращает пользователя по его username.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, username, email, full_name, password_hash, refresh_token,
			      avatar_url, cover_image_url, created_at
			  FROM users
			  WHERE username = lower($1)`
	return s.scanUser(s.DB.QueryRowContext(ctx, query, username), op)
}

// GetUserByUsernameOrEmail возвращает пользователя, у которого совпадает
// username или email. Используется при входе и проверке уникальности
// перед регистрацией.
func (s *Storage) GetUserByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	const op = "storage.GetUserByUsernameOrEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, username, email, full_name, password_hash, refresh_token,
			      avatar_url, cover_image_url, created_at
			  FROM users
			  WHERE username = lower($1) OR email = lower($2)`
	return s.scanUser(s.DB.QueryRowContext(ctx, query, username, email), op)
}

// SetRefreshToken безусловно перезаписывает текущий refresh токен пользователя.
// nil очищает токен (logout). Используется при входе и выходе.
func (s *Storage) SetRefreshToken(ctx context.Context, userUID string, token *string) error {
	const op = "storage.SetRefreshToken"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET refresh_token = $1, updated_at = now() WHERE uid = $2`
	result, err := s.DB.ExecContext(ctx, query, token, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	return nil
}

// RotateRefreshToken заменяет refresh токен по принципу compare-and-swap:
// запись обновляется только если хранимое значение равно oldToken.
// Ноль затронутых строк означает, что токен уже был ротирован конкурентным
// запросом либо отозван, — возвращается ErrRotationConflict.
func (s *Storage) RotateRefreshToken(ctx context.Context, userUID, oldToken, newToken string) error {
	const op = "storage.RotateRefreshToken"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET refresh_token = $1, updated_at = now()
			  WHERE uid = $2 AND refresh_token = $3`
	result, err := s.DB.ExecContext(ctx, query, newToken, userUID, oldToken)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrRotationConflict)
	}
	return nil
}

// UpdatePasswordHash заменяет хэш пароля пользователя.
// Refresh токен при этом не трогается: действующие сессии сохраняются.
func (s *Storage) UpdatePasswordHash(ctx context.Context, userUID, passwordHash string) error {
	const op = "storage.UpdatePasswordHash"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET password_hash = $1, updated_at = now() WHERE uid = $2`
	result, err := s.DB.ExecContext(ctx, query, passwordHash, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	return nil
}

func (s *Storage) scanUser(row *sql.Row, op string) (*models.User, error) {
	u := &models.User{}
	var refreshToken, coverImageURL sql.NullString
	if err := row.Scan(&u.UID, &u.Username, &u.Email, &u.FullName, &u.PasswordHash,
		&refreshToken, &u.AvatarURL, &coverImageURL, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if refreshToken.Valid {
		u.RefreshToken = &refreshToken.String
	}
	if coverImageURL.Valid {
		u.CoverImageURL = &coverImageURL.String
	}
	return u, nil
}
