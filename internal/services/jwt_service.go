// Path: internal/services/jwt_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"bank-backend/internal/models"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// ErrMalformedToken is returned when a token fails signature verification or cannot be parsed.
var ErrMalformedToken = errors.New("malformed token")

// JWTService mints and reads HS256 tokens. It knows nothing about revocation.
type JWTService interface {
	GenerateAccessToken(user *models.User) (string, error)
	GenerateRefreshToken(user *models.User) (string, error)
	// ExtractUsername returns the subject. Expiry is not checked.
	ExtractUsername(token string) (string, error)
	ExtractClaims(token string) (*models.Claims, error)
	// IsTokenExpired reports whether the expiry lies strictly before now.
	IsTokenExpired(token string) (bool, error)
}

type jwtService struct {
	key        []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
	parser     *jwt.Parser
}

// NewJWTService creates a new JWTService signing with key.
func NewJWTService(key []byte, accessTTL, refreshTTL time.Duration) JWTService {
	return newJWTService(key, accessTTL, refreshTTL, time.Now)
}

func newJWTService(key []byte, accessTTL, refreshTTL time.Duration, now func() time.Time) *jwtService {
	return &jwtService{
		key:        key,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        now,
		// Expiry is evaluated by IsTokenExpired so that a token at its exact expiry instant is still valid.
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}
}

func (s *jwtService) GenerateAccessToken(user *models.User) (string, error) {
	return s.generate(user, s.accessTTL)
}

func (s *jwtService) GenerateRefreshToken(user *models.User) (string, error) {
	return s.generate(user, s.refreshTTL)
}

func (s *jwtService) generate(user *models.User, ttl time.Duration) (string, error) {
	now := s.now()
	claims := &models.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *jwtService) ExtractClaims(tokenString string) (*models.Claims, error) {
	claims := &models.Claims{}
	token, err := s.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return s.key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if !token.Valid {
		return nil, ErrMalformedToken
	}
	return claims, nil
}

func (s *jwtService) ExtractUsername(tokenString string) (string, error) {
	return ExtractClaim(s, tokenString, func(c *models.Claims) string { return c.Subject })
}

func (s *jwtService) IsTokenExpired(tokenString string) (bool, error) {
	expiresAt, err := ExtractClaim(s, tokenString, func(c *models.Claims) *jwt.NumericDate { return c.ExpiresAt })
	if err != nil {
		return false, err
	}
	if expiresAt == nil {
		return true, nil
	}
	return expiresAt.Time.Before(s.now()), nil
}

// ExtractClaim parses token with codec and applies resolve to its claims.
func ExtractClaim[T any](codec JWTService, token string, resolve func(*models.Claims) T) (T, error) {
	claims, err := codec.ExtractClaims(token)
	if err != nil {
		var zero T
		return zero, err
	}
	return resolve(claims), nil
}
