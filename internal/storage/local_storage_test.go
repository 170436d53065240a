package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLocalStorage(t *testing.T) {
	tempDir := t.TempDir()

	storage, err := NewLocalStorage(tempDir)
	require.NoError(t, err)
	require.NotNil(t, storage)
	require.Equal(t, tempDir, storage.basePath)
	require.NoError(t, storage.Ping(context.Background()))
}

func TestLocalStorage_PutGetDelete(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	content := "Hello, world!"
	cid, size, err := storage.Put(ctx, strings.NewReader(content))
	require.NoError(t, err)
	require.Equal(t, int64(len(content)), size)

	sum := sha256.Sum256([]byte(content))
	require.Equal(t, hex.EncodeToString(sum[:]), cid)

	fileInfo, err := os.Stat(storage.getPathFromCID(cid))
	require.NoError(t, err)
	require.Equal(t, int64(len(content)), fileInfo.Size())

	rc, err := storage.Get(ctx, cid)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	rc.Close()
	require.Equal(t, content, string(got))

	require.NoError(t, storage.Delete(cid))
	_, err = os.Stat(storage.getPathFromCID(cid))
	require.True(t, os.IsNotExist(err))

	require.NoError(t, storage.Delete(cid), "deleting a missing blob is not an error")
}

func TestLocalStorage_SameContentSameCID(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	a, _, err := storage.Put(ctx, strings.NewReader("same bytes"))
	require.NoError(t, err)
	b, _, err := storage.Put(ctx, strings.NewReader("same bytes"))
	require.NoError(t, err)
	c, _, err := storage.Put(ctx, strings.NewReader("other bytes"))
	require.NoError(t, err)

	require.Equal(t, a, b)
	require.NotEqual(t, a, c)

	entries, err := os.ReadDir(storage.basePath)
	require.NoError(t, err)
	for _, e := range entries {
		require.False(t, strings.HasPrefix(e.Name(), "upload-"), "temp file left behind: %s", e.Name())
	}
}

func TestLocalStorage_GetErrors(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = storage.Get(ctx, strings.Repeat("a", 64))
	require.ErrorIs(t, err, ErrBlobNotFound)

	_, err = storage.Get(ctx, "../../etc/passwd")
	require.ErrorIs(t, err, ErrInvalidCID)
}

func TestLocalStorage_PutLargeData(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	largeContent := bytes.Repeat([]byte{'a'}, 1024*1024)
	cid, size, err := storage.Put(context.Background(), bytes.NewReader(largeContent))
	require.NoError(t, err)
	require.Equal(t, int64(len(largeContent)), size)

	fileInfo, err := os.Stat(storage.getPathFromCID(cid))
	require.NoError(t, err)
	require.Equal(t, int64(len(largeContent)), fileInfo.Size())
}
