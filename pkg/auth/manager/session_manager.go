package manager

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/yourusername/mindquest/internal/domain/entity"
	"github.com/yourusername/mindquest/internal/domain/repository"
	apperrors "github.com/yourusername/mindquest/internal/pkg/errors"
	"github.com/yourusername/mindquest/pkg/auth"
)

// Константы cookie и ключей кеша
const (
	// Имя cookie с токеном сессии
	SessionCookie = "sessionid"
	// Имя cookie с CSRF-секретом
	CSRFSecretCookie = "csrf_secret"
	// Имя скрытого поля HTML-формы с CSRF токеном (хешем секрета)
	CSRFFormField = "csrf_token"
	// Имя заголовка для CSRF токена (хеша) в запросах к API
	CSRFHeader = "X-CSRF-Token"

	// Время жизни CSRF-секрета
	CSRFSecretLifetime = 365 * 24 * time.Hour
	// Время жизни flash-уведомления, если его не прочитали
	FlashLifetime = 5 * time.Minute

	revokedKeyPrefix = "session:revoked:"
	flashKeyPrefix   = "flash:"
)

// Ошибки сессии
var (
	ErrNoSession      = errors.New("session cookie not found")
	ErrSessionRevoked = errors.New("session has been revoked")
)

// SessionManager управляет cookie сессии, отзывом токенов, CSRF-секретом и flash-уведомлениями
type SessionManager struct {
	jwtService *auth.JWTService
	cache      repository.CacheRepository

	// Настройки для Cookie
	cookiePath     string
	cookieDomain   string
	cookieSecure   bool
	cookieSameSite http.SameSite
}

// NewSessionManager создает новый менеджер сессий
func NewSessionManager(jwtService *auth.JWTService, cache repository.CacheRepository) (*SessionManager, error) {
	if jwtService == nil {
		return nil, fmt.Errorf("JWTService is required for SessionManager")
	}
	if cache == nil {
		return nil, fmt.Errorf("CacheRepository is required for SessionManager")
	}
	return &SessionManager{
		jwtService:     jwtService,
		cache:          cache,
		cookiePath:     "/",
		cookieSameSite: http.SameSiteLaxMode,
	}, nil
}

// SetCookieSecure включает флаг Secure для всех cookie (production за HTTPS)
func (m *SessionManager) SetCookieSecure(secure bool) {
	m.cookieSecure = secure
	log.Printf("[SessionManager] Cookie Secure set to: %v", secure)
}

// StartSession выпускает новый токен сессии и устанавливает его в HttpOnly cookie
func (m *SessionManager) StartSession(w http.ResponseWriter, user *entity.User) (auth.Identity, error) {
	token, claims, err := m.jwtService.GenerateToken(user)
	if err != nil {
		return auth.Identity{}, fmt.Errorf("failed to issue session token: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     m.cookiePath,
		Domain:   m.cookieDomain,
		HttpOnly: true,
		Secure:   m.cookieSecure,
		SameSite: m.cookieSameSite,
		MaxAge:   int(m.jwtService.Lifetime().Seconds()),
	})

	log.Printf("[SessionManager] Сессия начата для пользователя ID=%d", user.ID)
	return claims.Identity(), nil
}

// Authenticate проверяет cookie сессии и возвращает личность пользователя
func (m *SessionManager) Authenticate(ctx context.Context, r *http.Request) (auth.Identity, error) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return auth.Identity{}, ErrNoSession
	}

	claims, err := m.jwtService.ParseToken(cookie.Value)
	if err != nil {
		return auth.Identity{}, err
	}

	revoked, err := m.cache.Exists(ctx, revokedKeyPrefix+claims.ID)
	if err != nil {
		return auth.Identity{}, fmt.Errorf("failed to check session revocation: %w", err)
	}
	if revoked {
		return auth.Identity{}, ErrSessionRevoked
	}

	return claims.Identity(), nil
}

// Revoke отзывает токен сессии до истечения его срока действия
func (m *SessionManager) Revoke(ctx context.Context, identity auth.Identity) error {
	if identity.TokenID == "" {
		return nil
	}
	ttl := time.Until(identity.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := m.cache.Set(ctx, revokedKeyPrefix+identity.TokenID, "1", ttl); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	if err := m.cache.Delete(ctx, flashKeyPrefix+identity.TokenID); err != nil {
		log.Printf("[SessionManager] Не удалось удалить flash для сессии пользователя ID=%d: %v", identity.UserID, err)
	}
	log.Printf("[SessionManager] Сессия пользователя ID=%d отозвана", identity.UserID)
	return nil
}

// ClearSessionCookie удаляет cookie сессии
func (m *SessionManager) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     m.cookiePath,
		Domain:   m.cookieDomain,
		HttpOnly: true,
		Secure:   m.cookieSecure,
		SameSite: m.cookieSameSite,
		MaxAge:   -1,
	})
}

// SetFlash сохраняет одноразовое уведомление для сессии
func (m *SessionManager) SetFlash(ctx context.Context, identity auth.Identity, message string) error {
	return m.cache.Set(ctx, flashKeyPrefix+identity.TokenID, message, FlashLifetime)
}

// PopFlash возвращает и удаляет уведомление сессии; пустая строка, если его нет
func (m *SessionManager) PopFlash(ctx context.Context, identity auth.Identity) (string, error) {
	message, err := m.cache.Pop(ctx, flashKeyPrefix+identity.TokenID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return "", nil
	}
	return message, err
}

// EnsureCSRFSecret возвращает CSRF-секрет из cookie или создает новый
func (m *SessionManager) EnsureCSRFSecret(w http.ResponseWriter, r *http.Request) (string, error) {
	if secret, err := m.GetCSRFSecretFromCookie(r); err == nil {
		return secret, nil
	}

	secret, err := generateRandomString(64)
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFSecretCookie,
		Value:    secret,
		Path:     m.cookiePath,
		Domain:   m.cookieDomain,
		HttpOnly: true,
		Secure:   m.cookieSecure,
		SameSite: m.cookieSameSite,
		MaxAge:   int(CSRFSecretLifetime.Seconds()),
	})
	return secret, nil
}

// GetCSRFSecretFromCookie получает CSRF-секрет из куки
func (m *SessionManager) GetCSRFSecretFromCookie(r *http.Request) (string, error) {
	cookie, err := r.Cookie(CSRFSecretCookie)
	if err != nil {
		return "", err
	}
	if cookie.Value == "" {
		return "", http.ErrNoCookie
	}
	return cookie.Value, nil
}

// ValidCSRFToken сравнивает присланный токен с хешем секрета за постоянное время
func ValidCSRFToken(secret, token string) bool {
	if secret == "" || token == "" {
		return false
	}
	expected := HashCSRFSecret(secret)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(token)) == 1
}

// HashCSRFSecret хеширует CSRF секрет с использованием SHA-256
func HashCSRFSecret(secret string) string {
	hasher := sha256.New()
	hasher.Write([]byte(secret))
	return hex.EncodeToString(hasher.Sum(nil))
}

// generateRandomString генерирует случайную строку указанной длины в hex формате
func generateRandomString(length int) (string, error) {
	b := make([]byte, length/2) // Каждый байт кодируется двумя hex символами
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random string: %w", err)
	}
	return hex.EncodeToString(b), nil
}
