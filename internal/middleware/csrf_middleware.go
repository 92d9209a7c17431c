package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/mindquest/pkg/auth/manager"
)

// csrfTokenKey - ключ контекста Gin с CSRF токеном для шаблонов
const csrfTokenKey = "csrf_token"

// ProvideCSRF гарантирует наличие cookie с CSRF-секретом и кладет токен (хеш секрета) в контекст
func (m *AuthMiddleware) ProvideCSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		secret, err := m.sessions.EnsureCSRFSecret(c.Writer, c.Request)
		if err != nil {
			log.Printf("[CSRF Middleware] Не удалось создать CSRF секрет: %v", err)
			abortWithError(c, http.StatusInternalServerError, "Internal server error", "internal_server_error")
			return
		}
		c.Set(csrfTokenKey, manager.HashCSRFSecret(secret))
		c.Next()
	}
}

// CSRFToken возвращает токен, установленный ProvideCSRF
func CSRFToken(c *gin.Context) string {
	return c.GetString(csrfTokenKey)
}

// RequireCSRF проверяет CSRF токен для state-changing методов.
// Реализует Double Submit Cookie: токен из поля формы или заголовка X-CSRF-Token
// должен совпадать с хешем секрета из cookie.
func (m *AuthMiddleware) RequireCSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Пропускаем проверку для безопасных методов
		method := c.Request.Method
		if method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions || method == http.MethodTrace {
			c.Next()
			return
		}

		token := c.GetHeader(manager.CSRFHeader)
		if token == "" {
			token = c.PostForm(manager.CSRFFormField)
		}
		if token == "" {
			abortWithError(c, http.StatusForbidden, "Forbidden (CSRF token missing).", "csrf_token_missing")
			return
		}

		secret, err := m.sessions.GetCSRFSecretFromCookie(c.Request)
		if err != nil {
			abortWithError(c, http.StatusForbidden, "Forbidden (CSRF cookie not set).", "csrf_secret_cookie_invalid")
			return
		}

		if !manager.ValidCSRFToken(secret, token) {
			if gin.Mode() != gin.ReleaseMode {
				log.Printf("[CSRF Middleware] CSRF token mismatch, path %s", c.Request.URL.Path)
			}
			abortWithError(c, http.StatusForbidden, "Forbidden (CSRF token incorrect).", "csrf_token_invalid")
			return
		}

		// Токен нужен и шаблону, если форма будет показана снова
		c.Set(csrfTokenKey, token)
		c.Next()
	}
}
