package repository

import (
	"context"

	"github.com/yourusername/mindquest/internal/domain/entity"
)

// QuestionRepository определяет методы для работы с вопросами
type QuestionRepository interface {
	Create(ctx context.Context, question *entity.Question) error
	GetByID(ctx context.Context, id uint) (*entity.Question, error)
	GetByQuizID(ctx context.Context, quizID uint) ([]entity.Question, error)
	List(ctx context.Context) ([]entity.Question, error)
	DeleteAll(ctx context.Context) error
}
