package repository

import (
	"context"
	"time"
)

// CacheRepository определяет методы для работы с кешем.
// Используется для flash-уведомлений, отзыва сессий и счётчиков rate limit.
type CacheRepository interface {
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	// Get возвращает apperrors.ErrNotFound, если ключа нет
	Get(ctx context.Context, key string) (string, error)
	// Pop атомарно читает и удаляет значение; apperrors.ErrNotFound, если ключа нет
	Pop(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	// Increment увеличивает счётчик на 1; при создании ключа задаёт время жизни window
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
	TTL(ctx context.Context, key string) (time.Duration, error)
	Ping(ctx context.Context) error
}
