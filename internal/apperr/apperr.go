// Package apperr определяет классификацию ошибок сервиса.
//
// Каждая ошибка относится к одному из видов: ошибка валидации, конфликт
// уникальности, отсутствие сущности, отказ в авторизации или внутренняя ошибка.
// Вид определяет HTTP-статус на границе, текст — сообщение для пользователя.
// Внутренние детали (текст ошибок хранилища, стектрейсы) наружу не выходят.
package apperr

import (
	"errors"
	"net/http"
)

// Сентинелы видов ошибок. Проверяются через errors.Is.
var (
	// ErrValidation — некорректные или отсутствующие входные данные.
	ErrValidation = errors.New("validation error")
	// ErrConflict — нарушение уникальности.
	ErrConflict = errors.New("conflict")
	// ErrNotFound — запрошенная сущность отсутствует.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized — отказ проверки учетных данных или токена.
	// Намеренно малоинформативен, чтобы не раскрывать причину отказа.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInternal — сбой хранилища или внешней зависимости.
	ErrInternal = errors.New("internal error")
)

// Error связывает вид ошибки с человеко-читаемым сообщением.
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string { return e.msg }

// Is позволяет сопоставлять ошибку с сентинелом вида через errors.Is.
func (e *Error) Is(target error) bool { return target == e.kind }

// Validation возвращает ошибку валидации с заданным сообщением.
func Validation(msg string) *Error { return &Error{kind: ErrValidation, msg: msg} }

// Conflict возвращает ошибку конфликта уникальности.
func Conflict(msg string) *Error { return &Error{kind: ErrConflict, msg: msg} }

// NotFound возвращает ошибку отсутствия сущности.
func NotFound(msg string) *Error { return &Error{kind: ErrNotFound, msg: msg} }

// Unauthorized возвращает ошибку авторизации.
func Unauthorized(msg string) *Error { return &Error{kind: ErrUnauthorized, msg: msg} }

// Internal возвращает внутреннюю ошибку с нейтральным сообщением.
func Internal(msg string) *Error { return &Error{kind: ErrInternal, msg: msg} }

// HTTPStatus сопоставляет вид ошибки HTTP-статусу ответа.
// Неклассифицированные ошибки считаются внутренними.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
