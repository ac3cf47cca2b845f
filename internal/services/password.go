package services

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/apperror"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher wraps bcrypt. Failures other than a mismatch are internal
// errors, never reported as a wrong password.
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

func (h *PasswordHasher) Hash(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", apperror.Internal("failed to hash password", err)
	}
	return string(hash), nil
}

func (h *PasswordHasher) Verify(plain, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, apperror.Internal("failed to verify password", err)
	}
}
