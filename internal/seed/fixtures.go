// Package seed содержит встроенный в бинарник набор демонстрационных викторин.
package seed

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/yourusername/mindquest/internal/domain/entity"
)

//go:embed quizzes.yaml
var quizzesYAML []byte

type fixtureFile struct {
	Quizzes []quizFixture `yaml:"quizzes"`
}

type quizFixture struct {
	Title     string            `yaml:"title"`
	Questions []questionFixture `yaml:"questions"`
}

type questionFixture struct {
	Text    string          `yaml:"text"`
	Answers []answerFixture `yaml:"answers"`
}

type answerFixture struct {
	Text    string `yaml:"text"`
	Correct bool   `yaml:"correct"`
}

// Fixtures возвращает новые (не сохранённые) викторины со вложенными вопросами и ответами.
// Каждый вызов возвращает независимую копию.
func Fixtures() ([]entity.Quiz, error) {
	return Parse(quizzesYAML)
}

// Parse разбирает YAML с викторинами и проверяет его
func Parse(data []byte) ([]entity.Quiz, error) {
	var file fixtureFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse quiz fixtures: %w", err)
	}

	quizzes := make([]entity.Quiz, 0, len(file.Quizzes))
	for i, qf := range file.Quizzes {
		if qf.Title == "" {
			return nil, fmt.Errorf("quiz fixture #%d has no title", i+1)
		}
		quiz := entity.Quiz{Title: qf.Title}
		for j, qq := range qf.Questions {
			if qq.Text == "" {
				return nil, fmt.Errorf("quiz %q: question #%d has no text", qf.Title, j+1)
			}
			question := entity.Question{Text: qq.Text}
			for _, af := range qq.Answers {
				question.Answers = append(question.Answers, entity.Answer{Text: af.Text, IsCorrect: af.Correct})
			}
			quiz.Questions = append(quiz.Questions, question)
		}
		quizzes = append(quizzes, quiz)
	}
	return quizzes, nil
}
