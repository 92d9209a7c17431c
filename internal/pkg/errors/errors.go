package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда викторина, вопрос, ответ или пользователь не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized используется, когда у запроса нет действующей сессии.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// ErrConflict используется при нарушении уникальности (например, занятое имя пользователя).
	ErrConflict = errors.New("resource state conflict")
)
