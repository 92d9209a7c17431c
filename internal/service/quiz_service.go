package service

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"

	"github.com/yourusername/mindquest/internal/domain/entity"
	"github.com/yourusername/mindquest/internal/domain/repository"
	apperrors "github.com/yourusername/mindquest/internal/pkg/errors"
	"github.com/yourusername/mindquest/pkg/auth"
)

// Submission - ответы одной отправки: ID вопроса -> сырой идентификатор выбранного ответа.
// Пустое значение означает, что на вопрос не ответили.
type Submission map[uint]string

// SubmissionFromForm собирает Submission из полей формы вида question_<id>=<answerID>.
// Поля с другими именами и нечисловым ID вопроса игнорируются.
func SubmissionFromForm(values url.Values) Submission {
	submission := make(Submission)
	for key, vals := range values {
		if !strings.HasPrefix(key, entity.QuestionFieldPrefix) || len(vals) == 0 {
			continue
		}
		questionID, err := strconv.ParseUint(strings.TrimPrefix(key, entity.QuestionFieldPrefix), 10, 64)
		if err != nil || questionID == 0 {
			continue
		}
		submission[uint(questionID)] = strings.TrimSpace(vals[0])
	}
	return submission
}

// SubmissionFromIDs собирает Submission из числовых ID ответов (JSON API)
func SubmissionFromIDs(answers map[uint]uint) Submission {
	submission := make(Submission, len(answers))
	for questionID, answerID := range answers {
		submission[questionID] = strconv.FormatUint(uint64(answerID), 10)
	}
	return submission
}

// QuizService предоставляет методы для работы с викторинами
type QuizService struct {
	store repository.QuizStore
}

// NewQuizService создает новый сервис викторин
func NewQuizService(store repository.QuizStore) *QuizService {
	return &QuizService{store: store}
}

// ListQuizzes возвращает все викторины по возрастанию ID
func (s *QuizService) ListQuizzes(ctx context.Context) ([]entity.Quiz, error) {
	quizzes, err := s.store.Quizzes().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}
	return quizzes, nil
}

// GetQuizForDisplay возвращает викторину с вопросами и вариантами ответов
func (s *QuizService) GetQuizForDisplay(ctx context.Context, quizID uint) (*entity.Quiz, error) {
	quiz, err := s.store.Quizzes().GetWithQuestions(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz %d: %w", quizID, err)
	}
	return quiz, nil
}

// ScoreSubmission проверяет ответы на все вопросы викторины и считает результат.
// Выбранный ответ, которого нет или который относится к другому вопросу,
// проваливает всю отправку с apperrors.ErrNotFound. Результат нигде не сохраняется.
func (s *QuizService) ScoreSubmission(ctx context.Context, identity auth.Identity, quizID uint, submission Submission) (entity.ScoreResult, error) {
	if identity.IsZero() {
		return entity.ScoreResult{}, apperrors.ErrUnauthorized
	}

	quiz, err := s.store.Quizzes().GetWithQuestions(ctx, quizID)
	if err != nil {
		return entity.ScoreResult{}, fmt.Errorf("failed to get quiz %d: %w", quizID, err)
	}

	score := 0
	for i := range quiz.Questions {
		question := &quiz.Questions[i]

		raw := submission[question.ID]
		if raw == "" {
			continue
		}

		answer, err := s.resolveAnswer(ctx, question, raw)
		if err != nil {
			return entity.ScoreResult{}, err
		}
		if answer.IsCorrect {
			score++
		}
	}

	result := entity.NewScoreResult(quiz, score, len(quiz.Questions))
	log.Printf("[QuizService] Пользователь ID=%d: викторина ID=%d, результат %d/%d",
		identity.UserID, quiz.ID, result.Score, result.Total)
	return result, nil
}

// resolveAnswer находит выбранный ответ и проверяет, что он относится к вопросу
func (s *QuizService) resolveAnswer(ctx context.Context, question *entity.Question, raw string) (*entity.Answer, error) {
	// Идентификаторы хранятся в BIGINT: значения больше MaxInt64 отсекаются до запроса
	answerID, err := strconv.ParseUint(raw, 10, 63)
	if err != nil || answerID == 0 {
		return nil, fmt.Errorf("answer %q for question %d: %w", raw, question.ID, apperrors.ErrNotFound)
	}

	answer, err := s.store.Answers().GetByID(ctx, uint(answerID))
	if err != nil {
		return nil, fmt.Errorf("answer %d for question %d: %w", answerID, question.ID, err)
	}
	if !answer.BelongsTo(question.ID) {
		return nil, fmt.Errorf("answer %d does not belong to question %d: %w", answerID, question.ID, apperrors.ErrNotFound)
	}
	return answer, nil
}
