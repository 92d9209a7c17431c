package memory

import (
	"context"
	"sync"
	"time"

	"github.com/yourusername/mindquest/internal/domain/entity"
	apperrors "github.com/yourusername/mindquest/internal/pkg/errors"
)

// UserRepo реализует repository.UserRepository в памяти
type UserRepo struct {
	mu     sync.RWMutex
	nextID uint
	users  map[uint]entity.User
}

// NewUserRepo создает пустой репозиторий пользователей
func NewUserRepo() *UserRepo {
	return &UserRepo{users: make(map[uint]entity.User)}
}

// Create сохраняет пользователя; занятое имя возвращает apperrors.ErrConflict
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == user.Username {
			return apperrors.ErrConflict
		}
	}

	now := time.Now()
	r.nextID++
	user.ID = r.nextID
	user.CreatedAt, user.UpdatedAt = now, now
	r.users[user.ID] = *user
	return nil
}

// GetByID возвращает пользователя по ID
func (r *UserRepo) GetByID(ctx context.Context, id uint) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &user, nil
}

// GetByUsername возвращает пользователя по имени
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Username == username {
			user := u
			return &user, nil
		}
	}
	return nil, apperrors.ErrNotFound
}
