// Package storage реализует хранилище данных на основе PostgreSQL
// для управления пользователями и ребрами подписок. Предоставляет методы
// создания, чтения и обновления учетных записей, условную ротацию
// refresh токена и выборки по графу подписок с присоединением профилей.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Ошибки уровня хранилища. Сервисы сопоставляют их через errors.Is
// и переводят в ошибки своей классификации.
var (
	// ErrUserNotFound — пользователь не найден.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists — нарушена уникальность username или email.
	ErrUserExists = errors.New("user already exists")
	// ErrEdgeNotFound — ребро подписки не найдено.
	ErrEdgeNotFound = errors.New("subscription edge not found")
	// ErrEdgeExists — ребро для пары (subscriber, channel) уже существует.
	ErrEdgeExists = errors.New("subscription edge already exists")
	// ErrRotationConflict — условная ротация refresh токена не прошла:
	// хранимое значение уже не совпадает с предъявленным.
	ErrRotationConflict = errors.New("refresh token rotation conflict")
)

// Storage инкапсулирует соединение с базой данных PostgreSQL
// и реализует методы работы с пользователями и подписками.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL и проверяет его доступность.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// CheckDatabaseReady проверяет готовность базы данных.
func CheckDatabaseReady(storage *Storage) error {
	var exists bool
	err := storage.DB.QueryRow(`SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'users'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table users missing or query error: %w", err)
	}
	return nil
}

// isUniqueViolation распознает нарушение уникального ограничения PostgreSQL.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
