package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/mindquest/internal/handler/dto"
	"github.com/yourusername/mindquest/internal/middleware"
	apperrors "github.com/yourusername/mindquest/internal/pkg/errors"
	"github.com/yourusername/mindquest/internal/service"
	"github.com/yourusername/mindquest/pkg/auth"
)

// HealthCheck проверяет доступность одной зависимости (базы данных, кеша)
type HealthCheck func(ctx context.Context) error

// APIHandler обслуживает JSON API, повторяющий HTML-маршруты
type APIHandler struct {
	quizService *service.QuizService
	checks      map[string]HealthCheck
}

// NewAPIHandler создает обработчик JSON API
func NewAPIHandler(quizService *service.QuizService, checks map[string]HealthCheck) *APIHandler {
	return &APIHandler{
		quizService: quizService,
		checks:      checks,
	}
}

// ListQuizzes возвращает список викторин
func (h *APIHandler) ListQuizzes(c *gin.Context) {
	quizzes, err := h.quizService.ListQuizzes(c.Request.Context())
	if err != nil {
		h.handleAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quizzes": dto.NewListQuizResponse(quizzes)})
}

// GetQuiz возвращает викторину с вопросами и вариантами ответов без признака правильности
func (h *APIHandler) GetQuiz(c *gin.Context, identity auth.Identity) {
	quizID := c.MustGet("quizID").(uint)

	quiz, err := h.quizService.GetQuizForDisplay(c.Request.Context(), quizID)
	if err != nil {
		h.handleAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewQuizResponse(quiz, true))
}

// SubmitQuiz проверяет ответы и возвращает результат.
// Тело: {"answers": {"<questionID>": <answerID>}}
func (h *APIHandler) SubmitQuiz(c *gin.Context, identity auth.Identity) {
	quizID := c.MustGet("quizID").(uint)

	var req dto.SubmitQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "error_type": "validation_error"})
		return
	}

	result, err := h.quizService.ScoreSubmission(c.Request.Context(), identity, quizID, service.SubmissionFromIDs(req.Answers))
	if err != nil {
		h.handleAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewScoreResponse(result))
}

// GetCSRFToken возвращает CSRF токен (хеш секрета) для заголовка X-CSRF-Token.
// Должен применяться после ProvideCSRF.
func (h *APIHandler) GetCSRFToken(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"csrf_token": middleware.CSRFToken(c)})
}

// Health проверяет зависимости приложения; 503, если хотя бы одна недоступна
func (h *APIHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	results := make(gin.H, len(names))
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			log.Printf("[Health] Проверка %s не пройдена: %v", name, err)
			results[name] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "unavailable"
	}
	c.JSON(status, gin.H{"status": overall, "checks": results})
}

// handleAPIError обрабатывает ошибки от сервисов и отправляет соответствующий HTTP ответ
func (h *APIHandler) handleAPIError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found", "error_type": "not_found"})
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "error_type": "unauthorized"})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "error_type": "validation_error"})
	default:
		log.Printf("ERROR: Internal server error in APIHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "error_type": "internal_server_error"})
	}
}
