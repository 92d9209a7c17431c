package service

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/mindquest/internal/domain/entity"
	"github.com/yourusername/mindquest/internal/domain/repository"
	apperrors "github.com/yourusername/mindquest/internal/pkg/errors"
	"github.com/yourusername/mindquest/internal/repository/memory"
	"github.com/yourusername/mindquest/internal/seed"
	"github.com/yourusername/mindquest/pkg/auth"
)

var testIdentity = auth.Identity{
	UserID:    1,
	Username:  "alice",
	TokenID:   "test-jti",
	ExpiresAt: time.Now().Add(time.Hour),
}

// seededQuizService загружает демонстрационные викторины в хранилище в памяти
func seededQuizService(t *testing.T) (*QuizService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	_, err := NewSeedService(store, seed.Fixtures).ResetAndPopulate(context.Background())
	require.NoError(t, err)
	return NewQuizService(store), store
}

func quizByTitle(t *testing.T, s *QuizService, title string) *entity.Quiz {
	t.Helper()
	ctx := context.Background()
	quizzes, err := s.ListQuizzes(ctx)
	require.NoError(t, err)
	for _, q := range quizzes {
		if q.Title == title {
			quiz, err := s.GetQuizForDisplay(ctx, q.ID)
			require.NoError(t, err)
			return quiz
		}
	}
	t.Fatalf("quiz %q not found", title)
	return nil
}

func correctAnswer(t *testing.T, q entity.Question) entity.Answer {
	t.Helper()
	for _, a := range q.Answers {
		if a.IsCorrect {
			return a
		}
	}
	t.Fatalf("question %d has no correct answer", q.ID)
	return entity.Answer{}
}

func wrongAnswer(t *testing.T, q entity.Question) entity.Answer {
	t.Helper()
	for _, a := range q.Answers {
		if !a.IsCorrect {
			return a
		}
	}
	t.Fatalf("question %d has no wrong answer", q.ID)
	return entity.Answer{}
}

func answerField(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func TestSubmissionFromForm(t *testing.T) {
	values := url.Values{
		"question_3":  {" 12 "},
		"question_4":  {""},
		"question_x":  {"5"},
		"question_0":  {"5"},
		"csrf_token":  {"abc"},
		"question_10": {"7", "8"},
	}

	submission := SubmissionFromForm(values)

	assert.Equal(t, Submission{3: "12", 4: "", 10: "7"}, submission)
}

func TestSubmissionFromIDs(t *testing.T) {
	assert.Equal(t, Submission{1: "10", 2: "20"}, SubmissionFromIDs(map[uint]uint{1: 10, 2: 20}))
}

func TestQuizService_ListQuizzes(t *testing.T) {
	s, _ := seededQuizService(t)

	quizzes, err := s.ListQuizzes(context.Background())

	require.NoError(t, err)
	require.Len(t, quizzes, 2)
	assert.Equal(t, "General Knowledge", quizzes[0].Title)
	assert.Equal(t, "Science", quizzes[1].Title)
	assert.Less(t, quizzes[0].ID, quizzes[1].ID)
}

func TestQuizService_GetQuizForDisplay(t *testing.T) {
	s, _ := seededQuizService(t)
	quiz := quizByTitle(t, s, "General Knowledge")

	require.Len(t, quiz.Questions, 5)
	assert.Equal(t, "What is the capital of France?", quiz.Questions[0].Text)
	for _, q := range quiz.Questions {
		assert.Len(t, q.Answers, 4)
		assert.Equal(t, 1, q.CorrectAnswersCount())
	}

	_, err := s.GetQuizForDisplay(context.Background(), 9999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestQuizService_ScoreSubmission(t *testing.T) {
	s, _ := seededQuizService(t)
	quiz := quizByTitle(t, s, "General Knowledge")
	qs := quiz.Questions

	tests := []struct {
		name       string
		submission func() Submission
		wantScore  int
		wantPct    float64
	}{
		{
			name: "all correct",
			submission: func() Submission {
				sub := Submission{}
				for _, q := range qs {
					sub[q.ID] = answerField(correctAnswer(t, q).ID)
				}
				return sub
			},
			wantScore: 5,
			wantPct:   100,
		},
		{
			name: "three correct two omitted",
			submission: func() Submission {
				return Submission{
					qs[0].ID: answerField(correctAnswer(t, qs[0]).ID),
					qs[1].ID: answerField(correctAnswer(t, qs[1]).ID),
					qs[2].ID: answerField(correctAnswer(t, qs[2]).ID),
				}
			},
			wantScore: 3,
			wantPct:   60,
		},
		{
			name: "empty values count as unanswered",
			submission: func() Submission {
				return Submission{
					qs[0].ID: answerField(correctAnswer(t, qs[0]).ID),
					qs[1].ID: "",
				}
			},
			wantScore: 1,
			wantPct:   20,
		},
		{
			name: "wrong answers score nothing",
			submission: func() Submission {
				sub := Submission{}
				for _, q := range qs {
					sub[q.ID] = answerField(wrongAnswer(t, q).ID)
				}
				return sub
			},
			wantScore: 0,
			wantPct:   0,
		},
		{
			name:       "nothing answered",
			submission: func() Submission { return Submission{} },
			wantScore:  0,
			wantPct:    0,
		},
		{
			name: "foreign question ids are ignored",
			submission: func() Submission {
				return Submission{
					qs[0].ID: answerField(correctAnswer(t, qs[0]).ID),
					99999:    "1",
				}
			},
			wantScore: 1,
			wantPct:   20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.ScoreSubmission(context.Background(), testIdentity, quiz.ID, tt.submission())

			require.NoError(t, err)
			assert.Equal(t, quiz.ID, result.QuizID)
			assert.Equal(t, tt.wantScore, result.Score)
			assert.Equal(t, 5, result.Total)
			assert.InDelta(t, tt.wantPct, result.Percentage, 0.001)
			assert.True(t, result.PercentageApplicable)
		})
	}
}

func TestQuizService_ScoreSubmissionMessage(t *testing.T) {
	s, _ := seededQuizService(t)
	quiz := quizByTitle(t, s, "General Knowledge")

	sub := Submission{}
	for _, q := range quiz.Questions[:3] {
		sub[q.ID] = answerField(correctAnswer(t, q).ID)
	}

	result, err := s.ScoreSubmission(context.Background(), testIdentity, quiz.ID, sub)

	require.NoError(t, err)
	assert.Equal(t, "You scored 3 out of 5 (60.00%)", result.Message())
}

func TestQuizService_ScoreSubmissionRejectsBadAnswers(t *testing.T) {
	s, _ := seededQuizService(t)
	general := quizByTitle(t, s, "General Knowledge")
	science := quizByTitle(t, s, "Science")
	first := general.Questions[0]

	tests := []struct {
		name  string
		value string
	}{
		{name: "non numeric", value: "paris"},
		{name: "zero", value: "0"},
		{name: "missing answer", value: "99999"},
		{name: "beyond bigint range", value: "9223372036854775808"},
		{name: "max uint64", value: "18446744073709551615"},
		{name: "answer of another question", value: answerField(correctAnswer(t, general.Questions[1]).ID)},
		{name: "answer of another quiz", value: answerField(science.Questions[0].Answers[0].ID)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.ScoreSubmission(context.Background(), testIdentity, general.ID, Submission{first.ID: tt.value})
			assert.ErrorIs(t, err, apperrors.ErrNotFound)
		})
	}
}

// strictAnswerRepo ведёт себя как драйвер Postgres: id вне BIGINT не кодируется
type strictAnswerRepo struct {
	repository.AnswerRepository
}

func (r strictAnswerRepo) GetByID(ctx context.Context, id uint) (*entity.Answer, error) {
	if uint64(id) > math.MaxInt64 {
		return nil, fmt.Errorf("%d is greater than maximum value for int64", uint64(id))
	}
	return r.AnswerRepository.GetByID(ctx, id)
}

type strictStore struct {
	repository.QuizStore
}

func (s strictStore) Answers() repository.AnswerRepository {
	return strictAnswerRepo{AnswerRepository: s.QuizStore.Answers()}
}

func TestQuizService_ScoreSubmissionOutOfRangeAnswerIsNotFound(t *testing.T) {
	seeded, store := seededQuizService(t)
	quiz := quizByTitle(t, seeded, "General Knowledge")
	s := NewQuizService(strictStore{QuizStore: store})
	first := quiz.Questions[0]

	_, err := s.ScoreSubmission(context.Background(), testIdentity, quiz.ID,
		Submission{first.ID: "9223372036854775808"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	result, err := s.ScoreSubmission(context.Background(), testIdentity, quiz.ID,
		Submission{first.ID: answerField(correctAnswer(t, first).ID)})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Score)
}

func TestQuizService_ScoreSubmissionRequiresIdentity(t *testing.T) {
	s, _ := seededQuizService(t)
	quiz := quizByTitle(t, s, "Science")

	_, err := s.ScoreSubmission(context.Background(), auth.Identity{}, quiz.ID, Submission{})

	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestQuizService_ScoreSubmissionUnknownQuiz(t *testing.T) {
	s, _ := seededQuizService(t)

	_, err := s.ScoreSubmission(context.Background(), testIdentity, 9999, Submission{})

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestQuizService_ScoreSubmissionEmptyQuiz(t *testing.T) {
	store := memory.NewStore()
	quiz := &entity.Quiz{Title: "Empty"}
	require.NoError(t, store.Quizzes().Create(context.Background(), quiz))
	s := NewQuizService(store)

	result, err := s.ScoreSubmission(context.Background(), testIdentity, quiz.ID, Submission{})

	require.NoError(t, err)
	assert.Equal(t, 0, result.Score)
	assert.Equal(t, 0, result.Total)
	assert.Zero(t, result.Percentage)
	assert.False(t, result.PercentageApplicable)
}
