package service

import (
	"context"
	"fmt"

	"github.com/yourusername/mindquest/internal/domain/repository"
)

// AnswerKeyRow - строка ключа ответов: один вариант ответа одного вопроса
type AnswerKeyRow struct {
	QuizID     uint
	QuizTitle  string
	QuestionID uint
	Question   string
	AnswerID   uint
	Answer     string
	IsCorrect  bool
}

// ExportService собирает ключ ответов всех викторин для выгрузки
type ExportService struct {
	store repository.QuizStore
}

// NewExportService создает сервис выгрузки
func NewExportService(store repository.QuizStore) *ExportService {
	return &ExportService{store: store}
}

// AnswerKey возвращает строки ключа ответов по возрастанию ID викторин, вопросов и ответов
func (s *ExportService) AnswerKey(ctx context.Context) ([]AnswerKeyRow, error) {
	quizzes, err := s.store.Quizzes().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}

	var rows []AnswerKeyRow
	for _, q := range quizzes {
		quiz, err := s.store.Quizzes().GetWithQuestions(ctx, q.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load quiz %d: %w", q.ID, err)
		}
		for _, question := range quiz.Questions {
			for _, answer := range question.Answers {
				rows = append(rows, AnswerKeyRow{
					QuizID:     quiz.ID,
					QuizTitle:  quiz.Title,
					QuestionID: question.ID,
					Question:   question.Text,
					AnswerID:   answer.ID,
					Answer:     answer.Text,
					IsCorrect:  answer.IsCorrect,
				})
			}
		}
	}
	return rows, nil
}
