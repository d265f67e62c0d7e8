package model

import (
	"errors"
	"strings"
	"time"
	"unicode"
)

// User is a registered account that can report items.
type User struct {
	ID           string    `json:"_id" bson:"_id"`
	Username     string    `json:"username" bson:"username"`
	PasswordHash string    `json:"-" bson:"password"`
	Contact      string    `json:"contact,omitempty" bson:"contact,omitempty"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}

// Profile is the public view of a user returned by the profile endpoint.
type Profile struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Contact  string `json:"contact"`
}

// Profile returns the public profile of the user.
func (u *User) Profile() Profile {
	return Profile{ID: u.ID, Username: u.Username, Contact: u.Contact}
}

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// ValidatePassword reports whether a password is acceptable for an account.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}

// ValidateUsername reports whether a username is acceptable.
func ValidateUsername(username string) error {
	if len(username) < 3 || len(username) > 64 {
		return errors.New("username must be between 3 and 64 characters")
	}
	if strings.IndexFunc(username, unicode.IsSpace) >= 0 {
		return errors.New("username must not contain whitespace")
	}
	return nil
}
