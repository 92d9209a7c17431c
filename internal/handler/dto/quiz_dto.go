package dto

import (
	"github.com/yourusername/mindquest/internal/domain/entity"
	"github.com/yourusername/mindquest/internal/handler/helper"
)

// QuestionResponse представляет вопрос в формате для ответа клиенту
type QuestionResponse struct {
	ID      uint                    `json:"id"`
	QuizID  uint                    `json:"quiz_id"`
	Text    string                  `json:"text"`
	Field   string                  `json:"field"`
	Options []helper.QuestionOption `json:"options"`
}

// QuizResponse представляет викторину в формате для ответа клиенту
type QuizResponse struct {
	ID            uint               `json:"id"`
	Title         string             `json:"title"`
	QuestionCount int                `json:"question_count,omitempty"`
	Questions     []QuestionResponse `json:"questions,omitempty"`
}

// ScoreResponse представляет результат проверки ответов
type ScoreResponse struct {
	QuizID     uint    `json:"quiz_id"`
	QuizTitle  string  `json:"quiz_title"`
	Score      int     `json:"score"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
	Message    string  `json:"message"`
}

// SubmitQuizRequest - тело запроса на отправку ответов: ID вопроса -> ID ответа
type SubmitQuizRequest struct {
	Answers map[uint]uint `json:"answers"`
}

// NewQuestionResponse создает DTO для вопроса
func NewQuestionResponse(q *entity.Question) QuestionResponse {
	return QuestionResponse{
		ID:      q.ID,
		QuizID:  q.QuizID,
		Text:    q.Text,
		Field:   q.FieldName(),
		Options: helper.ConvertAnswersToOptions(q.Answers),
	}
}

// NewQuizResponse создает DTO для викторины
func NewQuizResponse(quiz *entity.Quiz, includeQuestions bool) *QuizResponse {
	resp := &QuizResponse{
		ID:    quiz.ID,
		Title: quiz.Title,
	}
	if includeQuestions {
		resp.QuestionCount = len(quiz.Questions)
		resp.Questions = make([]QuestionResponse, len(quiz.Questions))
		for i := range quiz.Questions {
			resp.Questions[i] = NewQuestionResponse(&quiz.Questions[i])
		}
	}
	return resp
}

// NewListQuizResponse создает список DTO викторин без вопросов
func NewListQuizResponse(quizzes []entity.Quiz) []*QuizResponse {
	result := make([]*QuizResponse, len(quizzes))
	for i := range quizzes {
		result[i] = NewQuizResponse(&quizzes[i], false)
	}
	return result
}

// NewScoreResponse создает DTO результата
func NewScoreResponse(r entity.ScoreResult) ScoreResponse {
	return ScoreResponse{
		QuizID:     r.QuizID,
		QuizTitle:  r.QuizTitle,
		Score:      r.Score,
		Total:      r.Total,
		Percentage: r.Percentage,
		Message:    r.Message(),
	}
}
