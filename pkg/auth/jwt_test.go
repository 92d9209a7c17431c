package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/mindquest/internal/domain/entity"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestJWTService(t *testing.T) *JWTService {
	t.Helper()
	s, err := NewJWTService(testSecret, time.Hour)
	require.NoError(t, err)
	return s
}

func TestNewJWTService_RequiresSecret(t *testing.T) {
	_, err := NewJWTService("", time.Hour)
	assert.Error(t, err)
}

func TestJWTService_RoundTrip(t *testing.T) {
	s := newTestJWTService(t)
	user := &entity.User{ID: 7, Username: "alice"}

	token, issued, err := s.GenerateToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.NotEmpty(t, issued.ID)

	claims, err := s.ParseToken(token)
	require.NoError(t, err)

	identity := claims.Identity()
	assert.Equal(t, uint(7), identity.UserID)
	assert.Equal(t, "alice", identity.Username)
	assert.Equal(t, issued.ID, identity.TokenID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), identity.ExpiresAt, 5*time.Second)
}

func TestJWTService_UniqueTokenIDs(t *testing.T) {
	s := newTestJWTService(t)
	user := &entity.User{ID: 1, Username: "alice"}

	_, first, err := s.GenerateToken(user)
	require.NoError(t, err)
	_, second, err := s.GenerateToken(user)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestJWTService_RejectsUnsavedUser(t *testing.T) {
	s := newTestJWTService(t)
	_, _, err := s.GenerateToken(&entity.User{Username: "ghost"})
	assert.Error(t, err)
}

func TestJWTService_Expired(t *testing.T) {
	s := newTestJWTService(t)
	s.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := s.GenerateToken(&entity.User{ID: 1, Username: "alice"})
	require.NoError(t, err)

	_, err = s.ParseToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestJWTService_Invalid(t *testing.T) {
	s := newTestJWTService(t)
	other, err := NewJWTService("another-secret-another-secret-xx", time.Hour)
	require.NoError(t, err)

	foreign, _, err := other.GenerateToken(&entity.User{ID: 1, Username: "alice"})
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, &SessionClaims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "x",
			Issuer:    tokenIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "wrong secret", token: foreign},
		{name: "alg none", token: noneToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.ParseToken(tt.token)
			assert.ErrorIs(t, err, ErrTokenInvalid)
		})
	}
}
