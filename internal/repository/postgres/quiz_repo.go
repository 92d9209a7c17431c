package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/yourusername/mindquest/internal/domain/entity"
)

// QuizRepo реализует repository.QuizRepository
type QuizRepo struct {
	db *gorm.DB
}

// NewQuizRepo создает новый репозиторий викторин
func NewQuizRepo(db *gorm.DB) *QuizRepo {
	return &QuizRepo{db: db}
}

// Create создает новую викторину (вложенные вопросы и ответы сохраняются вместе с ней)
func (r *QuizRepo) Create(ctx context.Context, quiz *entity.Quiz) error {
	return translateError(r.db.WithContext(ctx).Create(quiz).Error)
}

// GetByID возвращает викторину по ID
func (r *QuizRepo) GetByID(ctx context.Context, id uint) (*entity.Quiz, error) {
	var quiz entity.Quiz
	if err := r.db.WithContext(ctx).First(&quiz, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &quiz, nil
}

// GetWithQuestions возвращает викторину вместе с вопросами и вариантами ответов
func (r *QuizRepo) GetWithQuestions(ctx context.Context, id uint) (*entity.Quiz, error) {
	var quiz entity.Quiz
	err := r.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("questions.id") }).
		Preload("Questions.Answers", func(db *gorm.DB) *gorm.DB { return db.Order("answers.id") }).
		First(&quiz, id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &quiz, nil
}

// List возвращает все викторины по возрастанию ID
func (r *QuizRepo) List(ctx context.Context) ([]entity.Quiz, error) {
	var quizzes []entity.Quiz
	err := r.db.WithContext(ctx).Order("id").Find(&quizzes).Error
	return quizzes, err
}

// DeleteAll удаляет все викторины. Вопросы и ответы удаляются каскадом по внешним ключам.
func (r *QuizRepo) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&entity.Quiz{}).Error
}
