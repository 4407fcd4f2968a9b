package domain

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
)

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrEmailTaken = errors.New("email already in use")
var ErrUserNotFound = errors.New("user not found")
var ErrUnauthenticated = errors.New("not authenticated")
var ErrInvalidToken = errors.New("invalid token")
var ErrTokenExpired = errors.New("token expired")
var ErrValidation = errors.New("validation failed")
var ErrInvalidUpdateFields = errors.New("invalid update fields")

const minPasswordLength = 7

// SessionToken is one active session credential. A user holds one entry per
// login; insertion order is login order. Removing the entry revokes the
// session even while the JWT signature remains valid.
type SessionToken struct {
	Token    string    `json:"token"`
	IssuedAt time.Time `json:"issued_at"`
}

// User models an account in the system.
type User struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Email        string         `json:"email"`
	PasswordHash string         `json:"-"`
	Age          int            `json:"age"`
	Tokens       []SessionToken `json:"-"`
	Avatar       []byte         `json:"-"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// HasToken reports whether token is among the user's active sessions.
func (u *User) HasToken(token string) bool {
	for _, t := range u.Tokens {
		if t.Token == token {
			return true
		}
	}
	return false
}

// NormalizeEmail trims and lowercases an address so lookups and the unique
// index are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks that the address has a parseable single-address shape.
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%w: email must be a valid address", ErrValidation)
	}
	return nil
}

// ValidatePassword enforces the account password policy: minimum length and
// no occurrence of the word "password" in any casing.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
	}
	if strings.Contains(strings.ToLower(password), "password") {
		return fmt.Errorf("%w: password cannot contain the word password", ErrValidation)
	}
	return nil
}

// ValidateAge rejects negative ages.
func ValidateAge(age int) error {
	if age < 0 {
		return fmt.Errorf("%w: age must be zero or positive", ErrValidation)
	}
	return nil
}
