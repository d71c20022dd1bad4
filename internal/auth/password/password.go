package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const MinLength = 8

var ErrTooShort = errors.New("password must be at least 8 characters")

// Hash returns the bcrypt hash of password. Costs outside bcrypt's range fall
// back to bcrypt.DefaultCost.
func Hash(password string, cost int) (string, error) {
	if len(password) < MinLength {
		return "", ErrTooShort
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify checks whether a password matches the encoded bcrypt hash.
func Verify(password, encoded string) bool {
	if encoded == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password)) == nil
}
