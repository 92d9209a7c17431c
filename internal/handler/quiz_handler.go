package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/yourusername/mindquest/internal/pkg/errors"
	"github.com/yourusername/mindquest/internal/service"
	"github.com/yourusername/mindquest/pkg/auth"
	"github.com/yourusername/mindquest/pkg/auth/manager"
)

// QuizHandler обрабатывает HTML-страницы викторин
type QuizHandler struct {
	quizService *service.QuizService
	sessions    *manager.SessionManager
}

// NewQuizHandler создает новый обработчик викторин
func NewQuizHandler(quizService *service.QuizService, sessions *manager.SessionManager) *QuizHandler {
	return &QuizHandler{
		quizService: quizService,
		sessions:    sessions,
	}
}

// ListQuizzes показывает каталог викторин
func (h *QuizHandler) ListQuizzes(c *gin.Context, identity auth.Identity) {
	quizzes, err := h.quizService.ListQuizzes(c.Request.Context())
	if err != nil {
		h.handleQuizError(c, identity, err)
		return
	}

	renderPage(c, http.StatusOK, "quiz_list.html", identity, gin.H{
		"Title":   "Quizzes",
		"Quizzes": quizzes,
	})
}

// QuizDetail показывает викторину с вопросами и одноразовым уведомлением о результате
func (h *QuizHandler) QuizDetail(c *gin.Context, identity auth.Identity) {
	quizID := c.MustGet("quizID").(uint) // Получаем из контекста

	quiz, err := h.quizService.GetQuizForDisplay(c.Request.Context(), quizID)
	if err != nil {
		h.handleQuizError(c, identity, err)
		return
	}

	flash, err := h.sessions.PopFlash(c.Request.Context(), identity)
	if err != nil {
		log.Printf("[QuizHandler] Не удалось прочитать уведомление для пользователя ID=%d: %v", identity.UserID, err)
	}

	renderPage(c, http.StatusOK, "quiz_detail.html", identity, gin.H{
		"Title": quiz.Title,
		"Quiz":  quiz,
		"Flash": flash,
	})
}

// SubmitQuiz проверяет ответы, сохраняет результат как уведомление и перенаправляет на страницу викторины
func (h *QuizHandler) SubmitQuiz(c *gin.Context, identity auth.Identity) {
	quizID := c.MustGet("quizID").(uint)

	if err := c.Request.ParseForm(); err != nil {
		renderErrorPage(c, http.StatusBadRequest, identity)
		return
	}

	submission := service.SubmissionFromForm(c.Request.PostForm)
	result, err := h.quizService.ScoreSubmission(c.Request.Context(), identity, quizID, submission)
	if err != nil {
		h.handleQuizError(c, identity, err)
		return
	}

	if err := h.sessions.SetFlash(c.Request.Context(), identity, result.Message()); err != nil {
		log.Printf("[QuizHandler] Не удалось сохранить уведомление для пользователя ID=%d: %v", identity.UserID, err)
	}

	c.Redirect(http.StatusSeeOther, fmt.Sprintf("/quiz/%d/", quizID))
}

// handleQuizError обрабатывает ошибки от сервиса викторин и отрисовывает соответствующую страницу
func (h *QuizHandler) handleQuizError(c *gin.Context, identity auth.Identity, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		renderErrorPage(c, http.StatusNotFound, identity)
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.Redirect(http.StatusFound, "/accounts/login/")
		c.Abort()
	default:
		log.Printf("ERROR: Internal server error in QuizHandler: %v", err)
		renderErrorPage(c, http.StatusInternalServerError, identity)
	}
}
