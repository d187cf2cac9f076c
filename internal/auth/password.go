package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// defaultCost is the bcrypt work factor. Cost 12 takes roughly ~250ms
// on a modern server — negligible for a login, expensive for an
// attacker iterating a password list.
const defaultCost = 12

// MinPasswordLength is the shortest password accepted at sign-up.
const MinPasswordLength = 8

// PasswordService provides bcrypt hashing and verification. The cost
// is injectable so tests can run with the bcrypt minimum.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with the default cost.
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: defaultCost}
}

// NewPasswordServiceForTest creates a PasswordService with a custom,
// usually minimal, cost. Do not use in production.
func NewPasswordServiceForTest(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// Hash hashes the plaintext password with bcrypt. The output embeds
// the salt and cost; store it as-is.
func (s *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) == 0 {
		return "", errors.New("auth: password must not be empty")
	}
	// bcrypt silently truncates beyond 72 bytes; reject instead.
	if len(plaintext) > 72 {
		return "", errors.New("auth: password must be at most 72 bytes")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), s.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches the stored hash.
func (s *PasswordService) Verify(hash, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
