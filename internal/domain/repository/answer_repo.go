package repository

import (
	"context"

	"github.com/yourusername/mindquest/internal/domain/entity"
)

// AnswerRepository определяет методы для работы с вариантами ответов
type AnswerRepository interface {
	Create(ctx context.Context, answer *entity.Answer) error
	GetByID(ctx context.Context, id uint) (*entity.Answer, error)
	GetByQuestionID(ctx context.Context, questionID uint) ([]entity.Answer, error)
	List(ctx context.Context) ([]entity.Answer, error)
	DeleteAll(ctx context.Context) error
}
