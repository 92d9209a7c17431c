package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/yourusername/mindquest/internal/domain/entity"
)

// AnswerRepo реализует repository.AnswerRepository
type AnswerRepo struct {
	db *gorm.DB
}

// NewAnswerRepo создает новый репозиторий вариантов ответа
func NewAnswerRepo(db *gorm.DB) *AnswerRepo {
	return &AnswerRepo{db: db}
}

// Create создает новый вариант ответа
func (r *AnswerRepo) Create(ctx context.Context, answer *entity.Answer) error {
	return translateError(r.db.WithContext(ctx).Create(answer).Error)
}

// GetByID возвращает вариант ответа по ID
func (r *AnswerRepo) GetByID(ctx context.Context, id uint) (*entity.Answer, error) {
	var answer entity.Answer
	if err := r.db.WithContext(ctx).First(&answer, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &answer, nil
}

// GetByQuestionID возвращает все варианты ответа на вопрос
func (r *AnswerRepo) GetByQuestionID(ctx context.Context, questionID uint) ([]entity.Answer, error) {
	var answers []entity.Answer
	err := r.db.WithContext(ctx).Where("question_id = ?", questionID).Order("id").Find(&answers).Error
	if err != nil {
		return nil, err
	}
	return answers, nil
}

// List возвращает все варианты ответов
func (r *AnswerRepo) List(ctx context.Context) ([]entity.Answer, error) {
	var answers []entity.Answer
	err := r.db.WithContext(ctx).Order("id").Find(&answers).Error
	return answers, err
}

// DeleteAll удаляет все варианты ответов
func (r *AnswerRepo) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&entity.Answer{}).Error
}
