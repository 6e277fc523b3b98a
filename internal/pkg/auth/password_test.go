// internal/pkg/auth/password_test.go
package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
)

func passwordTestConfig() *config.Config {
	// Minimum cost keeps the hashing tests fast
	return &config.Config{
		Security: config.SecurityConfig{BcryptCost: 4},
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	manager := NewPasswordManager(passwordTestConfig())

	hash, err := manager.HashPassword("Sup3rSecret")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "Sup3rSecret", hash)

	assert.NoError(t, manager.VerifyPassword("Sup3rSecret", hash))
	assert.Error(t, manager.VerifyPassword("WrongPassw0rd", hash))
}

func TestValidatePassword(t *testing.T) {
	manager := NewPasswordManager(passwordTestConfig())

	cases := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid", "Abcdef12", false},
		{"too short", "Ab1", true},
		{"no uppercase", "abcdef12", true},
		{"no lowercase", "ABCDEF12", true},
		{"no number", "Abcdefgh", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := manager.ValidatePassword(tc.password)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHashPasswordRejectsWeakPassword(t *testing.T) {
	manager := NewPasswordManager(passwordTestConfig())

	_, err := manager.HashPassword("weak")
	assert.Error(t, err)
}
