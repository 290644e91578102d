package server

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-assistant/internal/config"
)

const testSecret = "test-secret-key-for-jwt-signing-minimum-32-bytes"

func setupTestJWTService(_ *testing.T, ttl time.Duration) *JWTService {
	return NewJWTService(&config.VisitorTokenConfig{Secret: []byte(testSecret), TTL: ttl})
}

func TestJWTService_RoundTrip(t *testing.T) {
	service := setupTestJWTService(t, time.Hour)
	visitorID := uuid.New()

	token, err := service.GenerateToken(visitorID)
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, visitorID, claims.VisitorID())
	assert.Equal(t, visitorIssuer, claims.Issuer)
	assert.NotNil(t, claims.ExpiresAt)
}

func TestJWTService_ValidateToken_InvalidSignature(t *testing.T) {
	service := setupTestJWTService(t, time.Hour)
	other := NewJWTService(&config.VisitorTokenConfig{Secret: []byte("another-secret-of-sufficient-length"), TTL: time.Hour})

	token, err := other.GenerateToken(uuid.New())
	require.NoError(t, err)

	_, err = service.ValidateToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token signature")
}

func TestJWTService_ValidateToken_Expired(t *testing.T) {
	service := setupTestJWTService(t, time.Hour)
	issued := time.Now()
	service.now = func() time.Time { return issued }

	token, err := service.GenerateToken(uuid.New())
	require.NoError(t, err)

	service.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = service.ValidateToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token expired")
}

func TestJWTService_ValidateToken_Malformed(t *testing.T) {
	service := setupTestJWTService(t, time.Hour)

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := service.ValidateToken(token)
		assert.Error(t, err, "token %q", token)
	}
}

func TestJWTService_ValidateToken_RejectsOtherAlgorithms(t *testing.T) {
	service := setupTestJWTService(t, time.Hour)

	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    visitorIssuer,
		Subject:   uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = service.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_ValidateToken_RequiresVisitorSubject(t *testing.T) {
	service := setupTestJWTService(t, time.Hour)

	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    visitorIssuer,
		Subject:   "not-a-uuid",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = service.ValidateToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a visitor ID")
}

func TestJWTService_AsTokenService(t *testing.T) {
	tokens := setupTestJWTService(t, time.Hour).AsTokenService()
	visitorID := uuid.New()

	token, err := tokens.GenerateToken(visitorID)
	require.NoError(t, err)

	claims, err := tokens.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, visitorID, claims.VisitorID())

	_, err = tokens.ValidateToken("garbage")
	assert.Error(t, err)
}
