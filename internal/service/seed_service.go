package service

import (
	"context"
	"fmt"
	"log"

	"github.com/yourusername/mindquest/internal/domain/entity"
	"github.com/yourusername/mindquest/internal/domain/repository"
)

// SeedReport - сводка загруженных данных
type SeedReport struct {
	Quizzes   int
	Questions int
	Answers   int
}

// FixtureSource возвращает новый набор викторин для загрузки
type FixtureSource func() ([]entity.Quiz, error)

// SeedService пересоздаёт демонстрационный контент викторин
type SeedService struct {
	transactor repository.Transactor
	fixtures   FixtureSource
}

// NewSeedService создает сервис загрузки демонстрационных данных
func NewSeedService(transactor repository.Transactor, fixtures FixtureSource) *SeedService {
	return &SeedService{transactor: transactor, fixtures: fixtures}
}

// ResetAndPopulate в одной транзакции удаляет все ответы, вопросы и викторины
// и вставляет набор демонстрационных викторин. Любая ошибка откатывает всё.
func (s *SeedService) ResetAndPopulate(ctx context.Context) (SeedReport, error) {
	quizzes, err := s.fixtures()
	if err != nil {
		return SeedReport{}, fmt.Errorf("failed to load fixtures: %w", err)
	}

	var report SeedReport
	err = s.transactor.Transaction(ctx, func(store repository.QuizStore) error {
		if err := store.Answers().DeleteAll(ctx); err != nil {
			return fmt.Errorf("failed to delete answers: %w", err)
		}
		if err := store.Questions().DeleteAll(ctx); err != nil {
			return fmt.Errorf("failed to delete questions: %w", err)
		}
		if err := store.Quizzes().DeleteAll(ctx); err != nil {
			return fmt.Errorf("failed to delete quizzes: %w", err)
		}

		for i := range quizzes {
			quiz := &quizzes[i]
			if err := store.Quizzes().Create(ctx, quiz); err != nil {
				return fmt.Errorf("failed to create quiz %q: %w", quiz.Title, err)
			}
			report.Quizzes++
			for _, question := range quiz.Questions {
				report.Questions++
				report.Answers += len(question.Answers)
			}
		}
		return nil
	})
	if err != nil {
		return SeedReport{}, err
	}

	log.Printf("[SeedService] Загружено викторин: %d, вопросов: %d, ответов: %d",
		report.Quizzes, report.Questions, report.Answers)
	return report, nil
}
