// Package errdefs содержит общие ошибки предметной области, которые
// сервисы и хранилище оборачивают через %w, а HTTP-слой сопоставляет
// со статусами ответов через errors.Is.
package errdefs

import "errors"

var (
	// ErrNotFound запись не найдена.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists нарушение уникальности.
	ErrAlreadyExists = errors.New("already exists")
	// ErrForbidden у пользователя нет прав на действие.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthenticated неверные учётные данные или токен.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrValidation некорректные входные данные, не пойманные валидатором структуры.
	ErrValidation = errors.New("validation failed")
	// ErrUpstream ошибка внешнего платёжного провайдера.
	ErrUpstream = errors.New("payment provider unavailable")
)

// UpstreamError несёт текст ошибки провайдера и сопоставляется с ErrUpstream.
type UpstreamError struct {
	Provider string
	Message  string
}

func (e *UpstreamError) Error() string {
	return e.Provider + ": " + e.Message
}

// Is позволяет errors.Is(err, ErrUpstream).
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

// ValidationError несёт человеко-читаемое описание нарушения и сопоставляется с ErrValidation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Is позволяет errors.Is(err, ErrValidation).
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Validation создаёт ValidationError.
func Validation(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}
