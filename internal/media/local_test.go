package media

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalSaveServeDelete(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := NewLocal(filepath.Join(dir, "uploads"))
	require.NoError(t, err)

	ctx := context.Background()
	obj, err := store.Save(ctx, []byte("jpeg bytes"), "image/jpeg")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(obj.Key, ".jpg"))
	require.Equal(t, "/uploads/"+obj.Key, obj.URL)

	data, err := os.ReadFile(filepath.Join(store.Dir, obj.Key))
	require.NoError(t, err)
	require.Equal(t, "jpeg bytes", string(data))

	srv := httptest.NewServer(store.Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + obj.URL)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "jpeg bytes", string(body))
	require.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))

	require.NoError(t, store.Delete(ctx, obj.Key))
	_, err = os.Stat(filepath.Join(store.Dir, obj.Key))
	require.True(t, os.IsNotExist(err))

	// Deleting again is a no-op.
	require.NoError(t, store.Delete(ctx, obj.Key))
}

func TestLocalSaveLeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save(context.Background(), []byte("x"), "image/jpeg")
	require.NoError(t, err)

	entries, err := os.ReadDir(store.Dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.False(t, strings.HasPrefix(entries[0].Name(), "."))
}

func TestLocalDeleteRejectsTraversal(t *testing.T) {
	t.Parallel()

	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "../secret", "a/b.jpg", ".hidden"} {
		err := store.Delete(context.Background(), key)
		require.ErrorIs(t, err, ErrInvalidKey, "key %q", key)
	}
}

func TestLocalHandlerHidesListing(t *testing.T) {
	t.Parallel()

	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	srv := httptest.NewServer(store.Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/uploads/")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestNewLocalRequiresDir(t *testing.T) {
	t.Parallel()

	_, err := NewLocal("")
	require.Error(t, err)
}

func TestNewCloudinaryRequiresCredentials(t *testing.T) {
	t.Parallel()

	_, err := NewCloudinary(CloudinaryConfig{CloudName: "demo"})
	require.Error(t, err)
}
