package config

import (
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNewPasswordConfig(t *testing.T) {
	tests := []struct {
		name     string
		cost     string
		pepper   string
		wantCost int
		wantErr  string
	}{
		{name: "default cost", wantCost: 12},
		{name: "minimum cost", cost: "10", wantCost: 10},
		{name: "maximum cost", cost: "14", wantCost: 14},
		{name: "with pepper", cost: "11", pepper: "p3pp3r", wantCost: 11},
		{name: "cost too low", cost: "9", wantErr: "out of range"},
		{name: "cost too high", cost: "15", wantErr: "out of range"},
		{name: "cost not a number", cost: "twelve", wantErr: "invalid password configuration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setenv(t, "BCRYPT_COST", tt.cost)
			setenv(t, "PASSWORD_PEPPER", tt.pepper)

			cfg, err := NewPasswordConfig()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCost, cfg.BcryptCost)
			assert.Equal(t, tt.pepper, cfg.Pepper)
		})
	}
}

func TestPasswordConfig_HashAndVerify(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: bcrypt.MinCost}

	hash, err := cfg.HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$2a$"))

	assert.True(t, cfg.VerifyPassword("correct horse", hash))
	assert.False(t, cfg.VerifyPassword("wrong horse", hash))
	assert.False(t, cfg.VerifyPassword("correct horse", "not-a-hash"))
}

func TestPasswordConfig_Pepper(t *testing.T) {
	peppered := &PasswordConfig{BcryptCost: bcrypt.MinCost, Pepper: "pepper-1"}
	rotated := &PasswordConfig{BcryptCost: bcrypt.MinCost, Pepper: "pepper-2"}
	plain := &PasswordConfig{BcryptCost: bcrypt.MinCost}

	hash, err := peppered.HashPassword("secret")
	require.NoError(t, err)

	assert.True(t, peppered.VerifyPassword("secret", hash))
	assert.False(t, rotated.VerifyPassword("secret", hash))
	assert.False(t, plain.VerifyPassword("secret", hash))
}

func TestPasswordConfig_SaltUniqueness(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: bcrypt.MinCost}

	a, err := cfg.HashPassword("same")
	require.NoError(t, err)
	b, err := cfg.HashPassword("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, cfg.VerifyPassword("same", a))
	assert.True(t, cfg.VerifyPassword("same", b))
}

func TestPasswordConfig_PasswordExceeding72Bytes(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: bcrypt.MinCost}

	_, err := cfg.HashPassword(strings.Repeat("a", 73))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to hash password")
}

func TestPasswordConfig_ConcurrentVerify(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: bcrypt.MinCost}
	hash, err := cfg.HashPassword("shared")
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]bool, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = cfg.VerifyPassword("shared", hash)
		}(i)
	}
	wg.Wait()

	for _, ok := range results {
		assert.True(t, ok)
	}
}

// setenv sets key for the test, unsetting it when value is empty.
func setenv(t *testing.T, key, value string) {
	t.Helper()
	t.Setenv(key, value)
	if value == "" {
		require.NoError(t, os.Unsetenv(key))
	}
}
