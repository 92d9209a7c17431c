package repository

import (
	"context"

	"github.com/yourusername/mindquest/internal/domain/entity"
)

// QuizRepository определяет методы для работы с викторинами
type QuizRepository interface {
	Create(ctx context.Context, quiz *entity.Quiz) error
	GetByID(ctx context.Context, id uint) (*entity.Quiz, error)
	// GetWithQuestions возвращает викторину вместе с вопросами и их ответами
	GetWithQuestions(ctx context.Context, id uint) (*entity.Quiz, error)
	// List возвращает все викторины в порядке по умолчанию (по возрастанию ID)
	List(ctx context.Context) ([]entity.Quiz, error)
	// DeleteAll удаляет все викторины (вопросы и ответы удаляются каскадно)
	DeleteAll(ctx context.Context) error
}
