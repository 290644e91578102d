package config

import (
	"crypto/rand"
	"fmt"
	"time"
)

// minSecretLength is the shortest accepted visitor cookie secret.
const minSecretLength = 16

// VisitorTokenConfig holds the key and lifetime of signed visitor cookies.
type VisitorTokenConfig struct {
	Secret []byte
	TTL    time.Duration
	// Ephemeral is set when the secret was generated for this process.
	Ephemeral bool
}

// NewVisitorTokenConfig creates the visitor cookie configuration from the
// session section. An empty secret is replaced with 32 random bytes.
func NewVisitorTokenConfig(s SessionConfig) (*VisitorTokenConfig, error) {
	config := &VisitorTokenConfig{
		Secret: []byte(s.CookieSecret),
		TTL:    s.CookieTTL.Std(),
	}

	if len(config.Secret) == 0 {
		secret := make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("failed to generate visitor cookie secret: %w", err)
		}
		config.Secret = secret
		config.Ephemeral = true
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}

	return config, nil
}

// normalize validates the configuration.
func (c *VisitorTokenConfig) normalize() error {
	if len(c.Secret) < minSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes, got %d", minSecretLength, len(c.Secret))
	}
	if c.TTL < time.Minute {
		return fmt.Errorf("SESSION_COOKIE_TTL must be at least 1 minute, got: %s", c.TTL)
	}
	return nil
}
