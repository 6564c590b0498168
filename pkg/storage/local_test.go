package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_UploadExistsDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir, "/img/")
	require.NoError(t, err)
	ctx := context.Background()

	resp, err := s.Upload(ctx, &UploadRequest{
		Key:         "users/user-1.jpeg",
		Reader:      strings.NewReader("jpeg-bytes"),
		ContentType: "image/jpeg",
	})
	require.NoError(t, err)
	assert.Equal(t, "/img/users/user-1.jpeg", resp.URL)
	assert.Equal(t, int64(10), resp.Size)

	data, err := os.ReadFile(filepath.Join(dir, "users", "user-1.jpeg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))

	ok, err := s.FileExists(ctx, "users/user-1.jpeg")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.Delete(ctx, "users/user-1.jpeg"))
	ok, err = s.FileExists(ctx, "users/user-1.jpeg")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, s.Delete(ctx, "users/missing.jpeg"))
}

func TestLocalStorage_KeyCannotEscapeBase(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(filepath.Join(dir, "img"), "/img")
	require.NoError(t, err)

	_, err = s.Upload(context.Background(), &UploadRequest{
		Key:    "../../etc/passwd",
		Reader: strings.NewReader("x"),
	})
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(dir, "img", "etc", "passwd"))
	assert.NoError(t, statErr)
}
