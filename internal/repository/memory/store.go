package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yourusername/mindquest/internal/domain/entity"
	"github.com/yourusername/mindquest/internal/domain/repository"
	apperrors "github.com/yourusername/mindquest/internal/pkg/errors"
)

// Store - хранилище контента викторин в памяти процесса.
// Используется в тестах и при локальном запуске без PostgreSQL.
// Реализует repository.QuizStore и repository.Transactor.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	data storeData
}

type storeData struct {
	nextQuizID     uint
	nextQuestionID uint
	nextAnswerID   uint

	quizzes   map[uint]entity.Quiz
	questions map[uint]entity.Question
	answers   map[uint]entity.Answer
}

// NewStore создает пустое хранилище
func NewStore() *Store {
	return &Store{
		data: storeData{
			quizzes:   make(map[uint]entity.Quiz),
			questions: make(map[uint]entity.Question),
			answers:   make(map[uint]entity.Answer),
		},
	}
}

func (s *Store) Quizzes() repository.QuizRepository         { return &QuizRepo{s: s} }
func (s *Store) Questions() repository.QuestionRepository { return &QuestionRepo{s: s} }
func (s *Store) Answers() repository.AnswerRepository     { return &AnswerRepo{s: s} }

// Transaction выполняет fn над снимком данных; при ошибке состояние восстанавливается.
// Транзакции выполняются последовательно.
func (s *Store) Transaction(ctx context.Context, fn func(store repository.QuizStore) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (d storeData) clone() storeData {
	c := storeData{
		nextQuizID:     d.nextQuizID,
		nextQuestionID: d.nextQuestionID,
		nextAnswerID:   d.nextAnswerID,
		quizzes:        make(map[uint]entity.Quiz, len(d.quizzes)),
		questions:      make(map[uint]entity.Question, len(d.questions)),
		answers:        make(map[uint]entity.Answer, len(d.answers)),
	}
	for k, v := range d.quizzes {
		c.quizzes[k] = v
	}
	for k, v := range d.questions {
		c.questions[k] = v
	}
	for k, v := range d.answers {
		c.answers[k] = v
	}
	return c
}

// insertQuestion сохраняет вопрос и его ответы. Вызывается под s.mu.
func (s *Store) insertQuestion(question *entity.Question) error {
	if _, ok := s.data.quizzes[question.QuizID]; !ok {
		return apperrors.ErrNotFound
	}
	now := time.Now()
	s.data.nextQuestionID++
	question.ID = s.data.nextQuestionID
	question.CreatedAt, question.UpdatedAt = now, now

	for i := range question.Answers {
		question.Answers[i].QuestionID = question.ID
		s.insertAnswer(&question.Answers[i])
	}

	stored := *question
	stored.Answers = nil
	s.data.questions[stored.ID] = stored
	return nil
}

// insertAnswer сохраняет ответ. Вызывается под s.mu.
func (s *Store) insertAnswer(answer *entity.Answer) {
	now := time.Now()
	s.data.nextAnswerID++
	answer.ID = s.data.nextAnswerID
	answer.CreatedAt, answer.UpdatedAt = now, now
	s.data.answers[answer.ID] = *answer
}

func (s *Store) sortedQuestions(quizID uint) []entity.Question {
	var result []entity.Question
	for _, q := range s.data.questions {
		if q.QuizID == quizID {
			result = append(result, q)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (s *Store) sortedAnswers(questionID uint) []entity.Answer {
	var result []entity.Answer
	for _, a := range s.data.answers {
		if a.QuestionID == questionID {
			result = append(result, a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// QuizRepo реализует repository.QuizRepository в памяти
type QuizRepo struct {
	s *Store
}

// Create сохраняет викторину вместе с вложенными вопросами и ответами
func (r *QuizRepo) Create(ctx context.Context, quiz *entity.Quiz) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now()
	r.s.data.nextQuizID++
	quiz.ID = r.s.data.nextQuizID
	quiz.CreatedAt, quiz.UpdatedAt = now, now

	stored := *quiz
	stored.Questions = nil
	r.s.data.quizzes[quiz.ID] = stored

	for i := range quiz.Questions {
		quiz.Questions[i].QuizID = quiz.ID
		if err := r.s.insertQuestion(&quiz.Questions[i]); err != nil {
			return err
		}
	}
	return nil
}

// GetByID возвращает викторину без вопросов
func (r *QuizRepo) GetByID(ctx context.Context, id uint) (*entity.Quiz, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	quiz, ok := r.s.data.quizzes[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &quiz, nil
}

// GetWithQuestions возвращает викторину с вопросами и ответами, упорядоченными по ID
func (r *QuizRepo) GetWithQuestions(ctx context.Context, id uint) (*entity.Quiz, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	quiz, ok := r.s.data.quizzes[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	quiz.Questions = r.s.sortedQuestions(id)
	for i := range quiz.Questions {
		quiz.Questions[i].Answers = r.s.sortedAnswers(quiz.Questions[i].ID)
	}
	return &quiz, nil
}

// List возвращает все викторины по возрастанию ID
func (r *QuizRepo) List(ctx context.Context) ([]entity.Quiz, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	quizzes := make([]entity.Quiz, 0, len(r.s.data.quizzes))
	for _, q := range r.s.data.quizzes {
		quizzes = append(quizzes, q)
	}
	sort.Slice(quizzes, func(i, j int) bool { return quizzes[i].ID < quizzes[j].ID })
	return quizzes, nil
}

// DeleteAll удаляет все викторины вместе с вопросами и ответами
func (r *QuizRepo) DeleteAll(ctx context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.data.quizzes = make(map[uint]entity.Quiz)
	r.s.data.questions = make(map[uint]entity.Question)
	r.s.data.answers = make(map[uint]entity.Answer)
	return nil
}

// QuestionRepo реализует repository.QuestionRepository в памяти
type QuestionRepo struct {
	s *Store
}

// Create сохраняет вопрос; викторина должна существовать
func (r *QuestionRepo) Create(ctx context.Context, question *entity.Question) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.insertQuestion(question)
}

// GetByID возвращает вопрос по ID
func (r *QuestionRepo) GetByID(ctx context.Context, id uint) (*entity.Question, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	question, ok := r.s.data.questions[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &question, nil
}

// GetByQuizID возвращает вопросы викторины
func (r *QuestionRepo) GetByQuizID(ctx context.Context, quizID uint) ([]entity.Question, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.sortedQuestions(quizID), nil
}

// List возвращает все вопросы
func (r *QuestionRepo) List(ctx context.Context) ([]entity.Question, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	questions := make([]entity.Question, 0, len(r.s.data.questions))
	for _, q := range r.s.data.questions {
		questions = append(questions, q)
	}
	sort.Slice(questions, func(i, j int) bool { return questions[i].ID < questions[j].ID })
	return questions, nil
}

// DeleteAll удаляет все вопросы вместе с ответами
func (r *QuestionRepo) DeleteAll(ctx context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.data.questions = make(map[uint]entity.Question)
	r.s.data.answers = make(map[uint]entity.Answer)
	return nil
}

// AnswerRepo реализует repository.AnswerRepository в памяти
type AnswerRepo struct {
	s *Store
}

// Create сохраняет ответ; вопрос должен существовать
func (r *AnswerRepo) Create(ctx context.Context, answer *entity.Answer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.questions[answer.QuestionID]; !ok {
		return apperrors.ErrNotFound
	}
	r.s.insertAnswer(answer)
	return nil
}

// GetByID возвращает ответ по ID
func (r *AnswerRepo) GetByID(ctx context.Context, id uint) (*entity.Answer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	answer, ok := r.s.data.answers[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &answer, nil
}

// GetByQuestionID возвращает ответы на вопрос
func (r *AnswerRepo) GetByQuestionID(ctx context.Context, questionID uint) ([]entity.Answer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.sortedAnswers(questionID), nil
}

// List возвращает все ответы
func (r *AnswerRepo) List(ctx context.Context) ([]entity.Answer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	answers := make([]entity.Answer, 0, len(r.s.data.answers))
	for _, a := range r.s.data.answers {
		answers = append(answers, a)
	}
	sort.Slice(answers, func(i, j int) bool { return answers[i].ID < answers[j].ID })
	return answers, nil
}

// DeleteAll удаляет все ответы
func (r *AnswerRepo) DeleteAll(ctx context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.data.answers = make(map[uint]entity.Answer)
	return nil
}
