package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jonathan/job-assistant/internal/config"
	"github.com/jonathan/job-assistant/internal/server/middleware"
)

// visitorIssuer is the issuer of visitor tokens.
const visitorIssuer = "job-assistant"

// Claims represents visitor token claims. The subject is the visitor ID.
type Claims struct {
	jwt.RegisteredClaims
}

// VisitorID returns the visitor ID from the claims.
// This implements the middleware.VisitorIDGetter interface.
func (c *Claims) VisitorID() uuid.UUID {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// AsTokenService returns a middleware.TokenService adapter for this JWTService.
// This allows the JWTService to be used with middleware without creating import cycles.
func (s *JWTService) AsTokenService() middleware.TokenService {
	return &jwtTokenService{service: s}
}

// jwtTokenService adapts JWTService to the middleware.TokenService interface.
type jwtTokenService struct {
	service *JWTService
}

func (v *jwtTokenService) GenerateToken(visitorID uuid.UUID) (string, error) {
	return v.service.GenerateToken(visitorID)
}

func (v *jwtTokenService) ValidateToken(tokenString string) (middleware.VisitorIDGetter, error) {
	claims, err := v.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// JWTService signs and validates visitor cookies.
type JWTService struct {
	config *config.VisitorTokenConfig
	now    func() time.Time
}

// NewJWTService creates a new JWT service with the given configuration.
func NewJWTService(cfg *config.VisitorTokenConfig) *JWTService {
	return &JWTService{config: cfg, now: time.Now}
}

// GenerateToken generates a signed token for the given visitor ID.
func (s *JWTService) GenerateToken(visitorID uuid.UUID) (string, error) {
	now := s.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    visitorIssuer,
			Subject:   visitorID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.config.Secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken validates a visitor token and returns the claims.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("token string is empty")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return s.config.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(visitorIssuer),
		jwt.WithTimeFunc(s.now),
	)

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrSignatureInvalid):
			return nil, fmt.Errorf("invalid token signature: %w", err)
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, fmt.Errorf("token expired: %w", err)
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, fmt.Errorf("malformed token: %w", err)
		}
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("token is not valid")
	}
	if claims.VisitorID() == uuid.Nil {
		return nil, fmt.Errorf("token subject is not a visitor ID")
	}

	return claims, nil
}
