package auth

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
)

var (
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrPasswordTooLong  = errors.New("password must be at most 72 bytes")
	ErrPasswordMismatch = errors.New("invalid email or password")
)

// ValidatePassword checks password length. bcrypt only reads the first 72
// bytes, so longer passwords are rejected rather than truncated.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	return nil
}

// HashPassword validates and hashes a password with bcrypt.
func HashPassword(password string) (string, error) {
	if err := ValidatePassword(password); err != nil {
		return "", err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrPasswordTooLong
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// CheckPassword compares a plaintext password with a bcrypt hash.
func CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		return fmt.Errorf("check password: %w", err)
	}
	return nil
}

var unknownAccountHash = sync.OnceValue(func() []byte {
	hashed, err := bcrypt.GenerateFromPassword([]byte("unknown-account-password"), bcrypt.DefaultCost)
	if err != nil {
		panic(fmt.Sprintf("hash unknown account password: %v", err))
	}
	return hashed
})

// CheckPasswordUnknownAccount runs a bcrypt comparison of the same cost as
// CheckPassword for a login whose account does not exist, so both paths take
// the same time. It always returns ErrPasswordMismatch.
func CheckPasswordUnknownAccount(password string) error {
	_ = bcrypt.CompareHashAndPassword(unknownAccountHash(), []byte(password))
	return ErrPasswordMismatch
}
