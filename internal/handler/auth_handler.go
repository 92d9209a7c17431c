package handler

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/mindquest/internal/form"
	"github.com/yourusername/mindquest/internal/service"
	"github.com/yourusername/mindquest/pkg/auth"
	"github.com/yourusername/mindquest/pkg/auth/manager"
)

// AuthHandler обрабатывает регистрацию, вход и выход
type AuthHandler struct {
	authService *service.AuthService
	sessions    *manager.SessionManager
}

// NewAuthHandler создает новый обработчик аутентификации
func NewAuthHandler(authService *service.AuthService, sessions *manager.SessionManager) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
	}
}

// RegisterPage показывает пустую форму регистрации
func (h *AuthHandler) RegisterPage(c *gin.Context, identity auth.Identity) {
	h.renderRegister(c, http.StatusOK, identity, url.Values{}, form.FieldErrors{})
}

// Register создает учётную запись, начинает сессию и перенаправляет в каталог
func (h *AuthHandler) Register(c *gin.Context, identity auth.Identity) {
	if err := c.Request.ParseForm(); err != nil {
		renderErrorPage(c, http.StatusBadRequest, identity)
		return
	}
	values := c.Request.PostForm

	reg, fieldErrs := form.ParseRegistration(values)
	if fieldErrs != nil {
		h.renderRegister(c, http.StatusOK, identity, values, fieldErrs)
		return
	}

	user, err := h.authService.Register(c.Request.Context(), reg)
	if err != nil {
		if fieldErrs, ok := form.AsFieldErrors(err); ok {
			h.renderRegister(c, http.StatusOK, identity, values, fieldErrs)
			return
		}
		h.handleAuthError(c, identity, err)
		return
	}

	if _, err := h.sessions.StartSession(c.Writer, user); err != nil {
		h.handleAuthError(c, identity, err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// LoginPage показывает форму входа
func (h *AuthHandler) LoginPage(c *gin.Context, identity auth.Identity) {
	h.renderLogin(c, http.StatusOK, identity, "", c.Query("next"), "", form.FieldErrors{})
}

// Login проверяет учётные данные, начинает сессию и перенаправляет на next или в каталог
func (h *AuthHandler) Login(c *gin.Context, identity auth.Identity) {
	if err := c.Request.ParseForm(); err != nil {
		renderErrorPage(c, http.StatusBadRequest, identity)
		return
	}
	next := c.Request.PostForm.Get("next")

	login, fieldErrs := form.ParseLogin(c.Request.PostForm)
	if fieldErrs != nil {
		h.renderLogin(c, http.StatusOK, identity, login.Username, next, "", fieldErrs)
		return
	}

	user, err := h.authService.Authenticate(c.Request.Context(), login.Username, login.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.renderLogin(c, http.StatusOK, identity, login.Username, next, form.MsgInvalidCredential, form.FieldErrors{})
			return
		}
		h.handleAuthError(c, identity, err)
		return
	}

	if _, err := h.sessions.StartSession(c.Writer, user); err != nil {
		h.handleAuthError(c, identity, err)
		return
	}
	c.Redirect(http.StatusFound, safeRedirect(next))
}

// Logout отзывает токен сессии, удаляет cookie и перенаправляет в каталог
func (h *AuthHandler) Logout(c *gin.Context, identity auth.Identity) {
	if err := h.sessions.Revoke(c.Request.Context(), identity); err != nil {
		// Cookie удаляется в любом случае
		log.Printf("[AuthHandler] Ошибка отзыва сессии пользователя ID=%d: %v", identity.UserID, err)
	}
	h.sessions.ClearSessionCookie(c.Writer)
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) renderRegister(c *gin.Context, status int, identity auth.Identity, values url.Values, errs form.FieldErrors) {
	renderPage(c, status, "register.html", identity, gin.H{
		"Title":    "Register",
		"Username": values.Get("username"),
		"Email":    values.Get("email"),
		"Errors":   errs,
	})
}

func (h *AuthHandler) renderLogin(c *gin.Context, status int, identity auth.Identity, username, next, notice string, errs form.FieldErrors) {
	renderPage(c, status, "login.html", identity, gin.H{
		"Title":    "Log in",
		"Username": username,
		"Next":     next,
		"Error":    notice,
		"Errors":   errs,
	})
}

// safeRedirect возвращает next, только если это локальный путь; иначе корень сайта
func safeRedirect(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return next
}

// handleAuthError обрабатывает непредвиденные ошибки аутентификации
func (h *AuthHandler) handleAuthError(c *gin.Context, identity auth.Identity, err error) {
	log.Printf("[AuthHandler] Auth Error: %v", err)
	renderErrorPage(c, http.StatusInternalServerError, identity)
}
