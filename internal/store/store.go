// Package store persists users, item reports and auth bookkeeping.
//
// Two backends implement Store: SQLite (the default, backed by a single file)
// and MongoDB. Lookups of missing records return a nil value and a nil error.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/erazemk/najdeno/internal/model"
)

// ErrUsernameTaken is returned by CreateUser when the username already exists.
var ErrUsernameTaken = errors.New("username already exists")

// Store is the persistence interface used by the application services.
type Store interface {
	CreateUser(ctx context.Context, u *model.User) error
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	UpdateUserContact(ctx context.Context, id, contact string) error
	UpdateUserPassword(ctx context.Context, id, passwordHash string) error

	CreateItem(ctx context.Context, item *model.Item) error
	GetItem(ctx context.Context, id string) (*model.Item, error)
	ListItems(ctx context.Context, filter model.ItemFilter) ([]model.Item, error)
	// DeleteItem removes the item only if it belongs to userID and reports
	// whether anything was removed.
	DeleteItem(ctx context.Context, id, userID string) (bool, error)

	RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)

	// Setting returns the value stored under key, storing candidate first if
	// the key is not set yet.
	Setting(ctx context.Context, key, candidate string) (string, error)

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// JWTSecretKey is the settings key holding the generated signing secret.
const JWTSecretKey = "jwt_secret"
