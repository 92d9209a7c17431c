package repository

import "context"

// QuizStore объединяет репозитории контента викторин
type QuizStore interface {
	Quizzes() QuizRepository
	Questions() QuestionRepository
	Answers() AnswerRepository
}

// Transactor выполняет fn в одной транзакции хранилища.
// Если fn возвращает ошибку, все изменения откатываются.
type Transactor interface {
	Transaction(ctx context.Context, fn func(store QuizStore) error) error
}
