package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	apperrors "github.com/yourusername/mindquest/internal/pkg/errors"
)

// CacheRepo реализует repository.CacheRepository в памяти процесса.
// Подходит только для одного экземпляра приложения (локальная разработка, тесты).
type CacheRepo struct {
	mu      sync.Mutex
	clock   func() time.Time
	entries map[string]cacheEntry
}

type cacheEntry struct {
	value     string
	expiresAt time.Time // нулевое значение - без срока жизни
}

func (e cacheEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// NewCacheRepo создает пустой кеш
func NewCacheRepo() *CacheRepo {
	return &CacheRepo{
		clock:   time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// lookup возвращает живую запись, удаляя просроченную. Вызывается под r.mu.
func (r *CacheRepo) lookup(key string) (cacheEntry, bool) {
	entry, ok := r.entries[key]
	if !ok {
		return cacheEntry{}, false
	}
	if entry.expired(r.clock()) {
		delete(r.entries, key)
		return cacheEntry{}, false
	}
	return entry, true
}

func (r *CacheRepo) expiresAt(expiration time.Duration) time.Time {
	if expiration <= 0 {
		return time.Time{}
	}
	return r.clock().Add(expiration)
}

// Set сохраняет значение
func (r *CacheRepo) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key] = cacheEntry{value: value, expiresAt: r.expiresAt(expiration)}
	return nil
}

// Get возвращает значение
func (r *CacheRepo) Get(ctx context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.lookup(key)
	if !ok {
		return "", apperrors.ErrNotFound
	}
	return entry.value, nil
}

// Pop возвращает значение и удаляет ключ
func (r *CacheRepo) Pop(ctx context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.lookup(key)
	if !ok {
		return "", apperrors.ErrNotFound
	}
	delete(r.entries, key)
	return entry.value, nil
}

// Delete удаляет ключ
func (r *CacheRepo) Delete(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, key)
	return nil
}

// Exists проверяет наличие ключа
func (r *CacheRepo) Exists(ctx context.Context, key string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.lookup(key)
	return ok, nil
}

// Increment увеличивает счётчик; окно window задаётся только новому ключу
func (r *CacheRepo) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.lookup(key)
	if !ok {
		r.entries[key] = cacheEntry{value: "1", expiresAt: r.expiresAt(window)}
		return 1, nil
	}

	count, err := strconv.ParseInt(entry.value, 10, 64)
	if err != nil {
		return 0, err
	}
	count++
	entry.value = strconv.FormatInt(count, 10)
	r.entries[key] = entry
	return count, nil
}

// TTL возвращает оставшееся время жизни ключа (0 для ключа без срока)
func (r *CacheRepo) TTL(ctx context.Context, key string) (time.Duration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.lookup(key)
	if !ok {
		return 0, apperrors.ErrNotFound
	}
	if entry.expiresAt.IsZero() {
		return 0, nil
	}
	return entry.expiresAt.Sub(r.clock()), nil
}

// Ping всегда успешен
func (r *CacheRepo) Ping(ctx context.Context) error {
	return nil
}
