// Package media stores processed item photos and hands back public URLs.
package media

import (
	"context"
	"errors"
)

// Object is a stored image.
type Object struct {
	// Key identifies the object for deletion.
	Key string
	// URL is where browsers can fetch the image.
	URL string
}

// Store saves and removes item images.
type Store interface {
	Save(ctx context.Context, data []byte, mime string) (Object, error)
	Delete(ctx context.Context, key string) error
}

// ErrInvalidKey is returned for keys that do not name a stored object.
var ErrInvalidKey = errors.New("invalid media key")

// extensionFor maps the content types produced by imaging to file extensions.
func extensionFor(mime string) string {
	switch mime {
	case "image/png":
		return ".png"
	default:
		return ".jpg"
	}
}
