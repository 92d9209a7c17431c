package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func hashForTest(t *testing.T, password string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hashed)
}

func TestUser_CheckPassword_CorrectPassword(t *testing.T) {
	// Arrange: пользователь с хешем пароля
	plainPassword := "correctPassword123"
	user := &User{Username: "testuser", PasswordHash: hashForTest(t, plainPassword)}

	// Act & Assert: правильный пароль должен вернуть true
	assert.True(t, user.CheckPassword(plainPassword), "CheckPassword должен вернуть true для правильного пароля")
}

func TestUser_CheckPassword_IncorrectPassword(t *testing.T) {
	user := &User{Username: "testuser", PasswordHash: hashForTest(t, "correctPassword123")}

	assert.False(t, user.CheckPassword("wrongPassword456"), "CheckPassword должен вернуть false для неправильного пароля")
	assert.False(t, user.CheckPassword(""), "CheckPassword должен вернуть false для пустого пароля")
}

func TestUser_CheckPassword_PlaintextStoredNeverMatches(t *testing.T) {
	// Открытый пароль в поле хеша не должен проходить проверку
	user := &User{Username: "testuser", PasswordHash: "plaintext-secret"}

	assert.False(t, user.CheckPassword("plaintext-secret"))
}

func TestUser_TableName(t *testing.T) {
	assert.Equal(t, "users", User{}.TableName(), "TableName должен возвращать 'users'")
}
