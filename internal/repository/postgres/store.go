package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/yourusername/mindquest/internal/domain/repository"
)

// Store реализует repository.QuizStore и repository.Transactor поверх одного *gorm.DB
type Store struct {
	db        *gorm.DB
	quizzes   *QuizRepo
	questions *QuestionRepo
	answers   *AnswerRepo
}

// NewStore создает хранилище контента викторин
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:        db,
		quizzes:   NewQuizRepo(db),
		questions: NewQuestionRepo(db),
		answers:   NewAnswerRepo(db),
	}
}

func (s *Store) Quizzes() repository.QuizRepository         { return s.quizzes }
func (s *Store) Questions() repository.QuestionRepository { return s.questions }
func (s *Store) Answers() repository.AnswerRepository     { return s.answers }

// Transaction выполняет fn в транзакции GORM; репозитории внутри fn работают через tx
func (s *Store) Transaction(ctx context.Context, fn func(store repository.QuizStore) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
