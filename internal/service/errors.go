package service

import "errors"

// Определяем кастомные ошибки для сервисов
var (
	// ErrInvalidCredentials возвращается при неверной паре имя/пароль.
	// Неизвестное имя и неверный пароль не различаются.
	ErrInvalidCredentials = errors.New("invalid username or password")
)
