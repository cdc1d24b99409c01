package domain

import (
	"strings"
	"time"
)

// MaxPasswordBytes is bcrypt's input limit.
const MaxPasswordBytes = 72

// User represents a registered account. Users are created at registration,
// never updated, and removed only by explicit deletion.
type User struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	Password       string    `json:"-"` // Plaintext, only present during registration
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"-"`
}

// NewUser creates a User with the given credentials after trimming the username.
// The caller hashes the password before the user is stored.
func NewUser(username, password string) (*User, error) {
	user := &User{
		Username:  strings.TrimSpace(username),
		Password:  password,
		CreatedAt: time.Now().UTC(),
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.Username == "" {
		return ErrEmptyUsername
	}
	if len([]rune(u.Username)) > MaxNameLength {
		return ErrUsernameTooLong
	}

	if u.Password != "" {
		if len(u.Password) > MaxPasswordBytes {
			return ErrPasswordTooLong
		}
		return nil
	}

	// Persisted users carry only the hash.
	if u.HashedPassword == "" {
		return ErrEmptyPassword
	}
	return nil
}
