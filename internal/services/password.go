// Path: internal/services/password.go
package services

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordEncoder hashes and verifies user passwords.
type PasswordEncoder interface {
	Hash(plain string) (string, error)
	// Matches reports whether plain matches hash. A mismatch is (false, nil).
	Matches(plain, hash string) (bool, error)
}

type bcryptEncoder struct {
	cost int
}

// NewPasswordEncoder returns a bcrypt encoder. Out of range costs fall back to bcrypt.DefaultCost.
func NewPasswordEncoder(cost int) PasswordEncoder {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &bcryptEncoder{cost: cost}
}

func (e *bcryptEncoder) Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), e.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func (e *bcryptEncoder) Matches(plain, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("failed to compare password: %w", err)
	}
}
