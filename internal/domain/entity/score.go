package entity

import (
	"fmt"
	"math"
)

// ScoreResult - итог проверки одной отправки ответов. Нигде не сохраняется.
type ScoreResult struct {
	QuizID    uint   `json:"quiz_id"`
	QuizTitle string `json:"quiz_title"`
	Score     int    `json:"score"`
	Total     int    `json:"total"`
	// Percentage округлён до двух знаков; для викторины без вопросов равен 0
	Percentage           float64 `json:"percentage"`
	PercentageApplicable bool    `json:"percentage_applicable"`
}

// NewScoreResult считает процент правильных ответов.
// При total == 0 процент не вычисляется.
func NewScoreResult(quiz *Quiz, score, total int) ScoreResult {
	result := ScoreResult{
		QuizID:    quiz.ID,
		QuizTitle: quiz.Title,
		Score:     score,
		Total:     total,
	}
	if total > 0 {
		result.Percentage = math.Round(float64(score)*10000/float64(total)) / 100
		result.PercentageApplicable = true
	}
	return result
}

// Message формирует уведомление для пользователя
func (r ScoreResult) Message() string {
	return fmt.Sprintf("You scored %d out of %d (%.2f%%)", r.Score, r.Total, r.Percentage)
}
