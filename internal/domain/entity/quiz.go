package entity

import (
	"time"
)

// Quiz представляет викторину: именованный набор вопросов
type Quiz struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Title     string     `gorm:"size:200;not null" json:"title"`
	Questions []Question `gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Quiz) TableName() string {
	return "quizzes"
}

// HasQuestions проверяет, есть ли у викторины хотя бы один вопрос
func (q *Quiz) HasQuestions() bool {
	return len(q.Questions) > 0
}
