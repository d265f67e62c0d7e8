// Package app holds the account and item report use cases shared by the JSON
// API and the web pages.
package app

import "errors"

var (
	ErrValidation         = errors.New("validation failed")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("not authorized")
	ErrInvalidImage       = errors.New("invalid image")
)

// Actor identifies the authenticated user performing an operation.
type Actor struct {
	UserID   string
	Username string
}
