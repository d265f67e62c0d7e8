package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/erazemk/najdeno/internal/config"
	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/media"
	"github.com/erazemk/najdeno/internal/store"
)

func TestRootCommandLayout(t *testing.T) {
	cmd := NewRootCommand(io.Discard, BuildInfo{})

	for _, name := range []string{"config", "env-file", "log-level", "log-file"} {
		require.NotNilf(t, cmd.PersistentFlags().Lookup(name), "missing flag %q", name)
	}
	for _, name := range []string{"serve", "migrate", "version"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		require.Equal(t, name, sub.Name())
	}

	serve, _, err := cmd.Find([]string{"serve"})
	require.NoError(t, err)
	for _, name := range []string{"addr", "db-driver", "db", "mongo-uri", "media-driver", "uploads"} {
		require.NotNilf(t, serve.Flags().Lookup(name), "missing serve flag %q", name)
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := NewRootCommand(&out, BuildInfo{Version: "1.2.0", Commit: "abc123", BuildTime: "today"})
	cmd.SetArgs([]string{"--env-file", "", "version", "--json"})
	require.NoError(t, cmd.Execute())

	var got BuildInfo
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Equal(t, "1.2.0", got.Version)
	require.Equal(t, "abc123", got.Commit)
}

func TestMigrateCreatesSQLiteDatabase(t *testing.T) {
	t.Setenv("NAJDENO_DB_DRIVER", "")
	path := filepath.Join(t.TempDir(), "campus.sqlite3")

	var out bytes.Buffer
	cmd := NewRootCommand(&out, BuildInfo{})
	cmd.SetArgs([]string{"--env-file", "", "migrate", "--db", path})
	require.NoError(t, cmd.Execute())

	require.Contains(t, out.String(), "schema ready")
	_, err := os.Stat(path)
	require.NoError(t, err)

	database, err := db.Open(path)
	require.NoError(t, err)
	defer database.Close()
	var n int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM items`).Scan(&n))
	require.Zero(t, n)
}

func TestMigrateRejectsUnknownDriver(t *testing.T) {
	cmd := NewRootCommand(io.Discard, BuildInfo{})
	cmd.SetArgs([]string{"--env-file", "", "migrate", "--db-driver", "postgres"})
	err := cmd.Execute()
	require.ErrorIs(t, err, config.ErrInvalidConfig)
}

func newTestHandler(t *testing.T) (http.Handler, *media.Local) {
	t.Helper()
	s := store.NewSQLite(db.NewTestDB(t))
	uploads, err := media.NewLocal(t.TempDir())
	require.NoError(t, err)

	handler, err := newHandler(handlerDeps{
		Config: &config.Config{
			JWT:            config.JWTConfig{Expiry: time.Hour},
			ContactPrefix:  "+91",
			CORSOrigins:    []string{"*"},
			MaxUploadBytes: 1 << 20,
		},
		Store:   s,
		Media:   uploads,
		Uploads: uploads.Handler(),
		Secret:  "test-secret",
	})
	require.NoError(t, err)
	return handler, uploads
}

func TestHandlerRoutes(t *testing.T) {
	handler, uploads := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"ok"`)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html"))

	obj, err := uploads.Save(context.Background(), []byte("jpeg bytes"), "image/jpeg")
	require.NoError(t, err)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, obj.URL, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "jpeg bytes", rec.Body.String())
}

func TestHandlerCORSPreflight(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/items", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Less(t, rec.Code, 300)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
