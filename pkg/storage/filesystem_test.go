package storage

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	rel, err := store.Save("assignment-7", "Essay.PDF", strings.NewReader("hello"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rel, "assignment-7/"))
	assert.True(t, strings.HasSuffix(rel, ".pdf"))

	f, err := store.Open(rel)
	require.NoError(t, err)
	body, err := io.ReadAll(f)
	require.NoError(t, f.Close())
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))

	require.NoError(t, store.Delete(rel))
	require.NoError(t, store.Delete(rel))
	_, err = store.Open(rel)
	assert.Error(t, err)
}

func TestLocalStorageRejectsEscapes(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Open("../secret")
	assert.Error(t, err)
	_, err = store.Open("/etc/passwd")
	assert.Error(t, err)

	rel, err := store.Save("../../up", "a.txt", strings.NewReader("x"))
	require.NoError(t, err)
	assert.False(t, strings.Contains(rel, ".."))
}

func TestLocalStorageRejectsOversizedAttachment(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("big", "blob.bin", bytes.NewReader(make([]byte, MaxAttachmentSize+1)))
	assert.ErrorIs(t, err, ErrTooLarge)
}
