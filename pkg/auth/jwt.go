package auth

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/yourusername/mindquest/internal/domain/entity"
)

const tokenIssuer = "mindquest"

// Ошибки разбора токена сессии
var (
	ErrTokenExpired = errors.New("token is expired")
	ErrTokenInvalid = errors.New("token is invalid")
)

// Identity - аутентифицированный пользователь текущего запроса.
// Передаётся обработчикам и сервисам явно, параметром.
type Identity struct {
	UserID    uint
	Username  string
	TokenID   string
	ExpiresAt time.Time
}

// IsZero сообщает, что личность не установлена
func (i Identity) IsZero() bool {
	return i.UserID == 0
}

// SessionClaims содержит поля токена сессии
type SessionClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Identity строит Identity из проверенных claims
func (c *SessionClaims) Identity() Identity {
	identity := Identity{
		UserID:   c.UserID,
		Username: c.Username,
		TokenID:  c.ID,
	}
	if c.ExpiresAt != nil {
		identity.ExpiresAt = c.ExpiresAt.Time
	}
	return identity
}

// JWTService выпускает и проверяет подписанные HS256 токены сессии
type JWTService struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

// NewJWTService создает новый сервис JWT и возвращает ошибку при проблемах
func NewJWTService(secret string, lifetime time.Duration) (*JWTService, error) {
	if secret == "" {
		return nil, fmt.Errorf("session secret is required for JWTService")
	}
	if lifetime <= 0 {
		lifetime = 24 * time.Hour
	}
	return &JWTService{
		secret:   []byte(secret),
		lifetime: lifetime,
		now:      time.Now,
	}, nil
}

// Lifetime возвращает время жизни выпускаемых токенов
func (s *JWTService) Lifetime() time.Duration {
	return s.lifetime
}

// GenerateToken создает новый токен сессии для пользователя с уникальным ID (jti)
func (s *JWTService) GenerateToken(user *entity.User) (string, *SessionClaims, error) {
	if user == nil || user.ID == 0 {
		return "", nil, errors.New("cannot issue token for unsaved user")
	}

	now := s.now()
	claims := &SessionClaims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		log.Printf("[JWT] Ошибка генерации токена для пользователя ID=%d: %v", user.ID, err)
		return "", nil, err
	}
	return tokenString, claims, nil
}

// ParseToken проверяет подпись, алгоритм и срок действия токена
func (s *JWTService) ParseToken(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, ErrTokenExpired
		}
		log.Printf("[JWT] Ошибка при разборе токена: %v", err)
		return nil, ErrTokenInvalid
	}

	if !token.Valid || claims.UserID == 0 || claims.ID == "" || claims.Issuer != tokenIssuer {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
