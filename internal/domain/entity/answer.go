package entity

import (
	"fmt"
	"time"
)

// QuestionFieldPrefix - префикс имени поля формы для ответа на вопрос
const QuestionFieldPrefix = "question_"

// Answer представляет вариант ответа на вопрос
type Answer struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	QuestionID uint      `gorm:"not null;index" json:"question_id"`
	Text       string    `gorm:"size:255;not null" json:"text"`
	IsCorrect  bool      `gorm:"not null;default:false" json:"-"` // Скрыто от клиента
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Answer) TableName() string {
	return "answers"
}

// BelongsTo проверяет, относится ли ответ к указанному вопросу
func (a *Answer) BelongsTo(questionID uint) bool {
	return a.QuestionID == questionID
}

// QuestionFieldName формирует имя поля формы для вопроса с указанным ID
func QuestionFieldName(questionID uint) string {
	return fmt.Sprintf("%s%d", QuestionFieldPrefix, questionID)
}
