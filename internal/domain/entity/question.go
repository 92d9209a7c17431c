package entity

import (
	"time"
)

// Question представляет вопрос викторины. Принадлежит ровно одной викторине
// и удаляется вместе с ней.
type Question struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	QuizID    uint      `gorm:"not null;index" json:"quiz_id"`
	Text      string    `gorm:"size:500;not null" json:"text"`
	Answers   []Answer  `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"answers,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "questions"
}

// FieldName возвращает имя поля формы, в котором приходит выбранный ответ
func (q *Question) FieldName() string {
	return QuestionFieldName(q.ID)
}

// CorrectAnswersCount возвращает количество ответов с флагом IsCorrect.
// Ноль или несколько правильных ответов допустимы: при подсчёте очков
// читается только флаг выбранного ответа.
func (q *Question) CorrectAnswersCount() int {
	count := 0
	for _, a := range q.Answers {
		if a.IsCorrect {
			count++
		}
	}
	return count
}
