package media

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DefaultURLPrefix is the path under which Local serves its files.
const DefaultURLPrefix = "/uploads/"

// Local keeps images in a directory on disk.
type Local struct {
	Dir       string
	URLPrefix string
}

// NewLocal creates the upload directory if needed.
func NewLocal(dir string) (*Local, error) {
	if dir == "" {
		return nil, fmt.Errorf("upload directory must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}
	return &Local{Dir: dir, URLPrefix: DefaultURLPrefix}, nil
}

// Save writes data to a new uniquely named file.
func (l *Local) Save(_ context.Context, data []byte, mime string) (Object, error) {
	name := uuid.NewString() + extensionFor(mime)

	tmp, err := os.CreateTemp(l.Dir, ".upload-*")
	if err != nil {
		return Object{}, fmt.Errorf("creating upload file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return Object{}, fmt.Errorf("writing upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return Object{}, fmt.Errorf("closing upload: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return Object{}, fmt.Errorf("setting upload permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(l.Dir, name)); err != nil {
		return Object{}, fmt.Errorf("storing upload: %w", err)
	}

	return Object{Key: name, URL: path.Join(l.prefix(), name)}, nil
}

// Delete removes a stored file. Missing files are not an error.
func (l *Local) Delete(_ context.Context, key string) error {
	if key == "" || key != filepath.Base(key) || strings.HasPrefix(key, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	if err := os.Remove(filepath.Join(l.Dir, key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting upload: %w", err)
	}
	return nil
}

// Handler serves stored files under URLPrefix without directory listings.
func (l *Local) Handler() http.Handler {
	files := http.FileServer(http.Dir(l.Dir))
	return http.StripPrefix(strings.TrimSuffix(l.prefix(), "/"), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") || strings.HasPrefix(path.Base(r.URL.Path), ".") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Cache-Control", "public, max-age=86400")
		files.ServeHTTP(w, r)
	}))
}

func (l *Local) prefix() string {
	if l.URLPrefix == "" {
		return DefaultURLPrefix
	}
	return l.URLPrefix
}
