package helper

import (
	"github.com/yourusername/mindquest/internal/domain/entity"
)

// QuestionOption представляет вариант ответа для клиента без признака правильности
type QuestionOption struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

// ConvertAnswersToOptions преобразует ответы вопроса в варианты для клиента.
// Флаг IsCorrect никогда не попадает в результат.
func ConvertAnswersToOptions(answers []entity.Answer) []QuestionOption {
	converted := make([]QuestionOption, len(answers))
	for i, a := range answers {
		converted[i] = QuestionOption{ID: a.ID, Text: a.Text}
	}
	return converted
}
