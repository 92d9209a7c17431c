package middleware

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/mindquest/pkg/auth"
	"github.com/yourusername/mindquest/pkg/auth/manager"
)

// LoginPath - страница входа, на которую перенаправляются анонимные запросы
const LoginPath = "/accounts/login/"

// IdentityHandler - обработчик, получающий личность пользователя явно.
// Для OptionalSession identity может быть нулевой.
type IdentityHandler func(c *gin.Context, identity auth.Identity)

// AuthMiddleware обеспечивает аутентификацию для защищенных маршрутов
type AuthMiddleware struct {
	sessions *manager.SessionManager
}

// NewAuthMiddleware создает новый middleware поверх SessionManager
func NewAuthMiddleware(sessions *manager.SessionManager) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

// authenticate проверяет сессию запроса.
// ok == false и err == nil означают анонимный запрос.
func (m *AuthMiddleware) authenticate(c *gin.Context) (auth.Identity, bool, error) {
	identity, err := m.sessions.Authenticate(c.Request.Context(), c.Request)
	switch {
	case err == nil:
		return identity, true, nil
	case errors.Is(err, manager.ErrNoSession):
		return auth.Identity{}, false, nil
	case errors.Is(err, manager.ErrSessionRevoked),
		errors.Is(err, auth.ErrTokenExpired),
		errors.Is(err, auth.ErrTokenInvalid):
		// Негодная cookie больше не нужна
		m.sessions.ClearSessionCookie(c.Writer)
		return auth.Identity{}, false, nil
	default:
		return auth.Identity{}, false, err
	}
}

// RequireSession пропускает только запросы с действующей сессией.
// Анонимный запрос перенаправляется на страницу входа с параметром next.
func (m *AuthMiddleware) RequireSession(next IdentityHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok, err := m.authenticate(c)
		if err != nil {
			log.Printf("[AuthMiddleware] Ошибка проверки сессии: %v", err)
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		if !ok {
			c.Redirect(http.StatusFound, LoginPath+"?next="+url.QueryEscape(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		next(c, identity)
	}
}

// RequireAPISession - вариант RequireSession для JSON API: без сессии отвечает 401
func (m *AuthMiddleware) RequireAPISession(next IdentityHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok, err := m.authenticate(c)
		if err != nil {
			log.Printf("[AuthMiddleware] Ошибка проверки сессии: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "error_type": "internal_server_error"})
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "error_type": "unauthorized"})
			return
		}
		next(c, identity)
	}
}

// OptionalSession передает обработчику личность, если сессия есть, и нулевую иначе
func (m *AuthMiddleware) OptionalSession(next IdentityHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, _, err := m.authenticate(c)
		if err != nil {
			// Для публичных страниц сбой кеша не критичен
			log.Printf("[AuthMiddleware] Сессия не проверена, запрос обработан как анонимный: %v", err)
		}
		next(c, identity)
	}
}

// isAPIRequest сообщает, ожидает ли клиент JSON
func isAPIRequest(c *gin.Context) bool {
	return strings.HasPrefix(c.Request.URL.Path, "/api/") ||
		strings.Contains(c.GetHeader("Accept"), "application/json")
}

// abortWithError отвечает JSON для API и простым текстом для HTML-страниц
func abortWithError(c *gin.Context, status int, message, errorType string) {
	if isAPIRequest(c) {
		c.AbortWithStatusJSON(status, gin.H{"error": message, "error_type": errorType})
		return
	}
	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.String(status, message)
	c.Abort()
}
