package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileTokenStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()

	s, err := NewFileTokenStore(dir)
	require.NoError(t, err)
	assert.Empty(t, s.Token())

	require.NoError(t, s.Save("abc123"))
	assert.Equal(t, "abc123", s.Token())

	// A fresh store over the same directory sees the persisted token.
	reopened, err := NewFileTokenStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "abc123", reopened.Token())
}

func TestFileTokenStoreClear(t *testing.T) {
	dir := t.TempDir()

	s, err := NewFileTokenStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.Save("abc123"))

	require.NoError(t, s.Clear())
	assert.Empty(t, s.Token())

	_, err = os.Stat(filepath.Join(dir, "token"))
	assert.True(t, os.IsNotExist(err), "token file removed")

	// Clearing an already empty store is fine.
	require.NoError(t, s.Clear())
}

func TestFileTokenStoreCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "storefront")

	s, err := NewFileTokenStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.Save("tok"))

	data, err := os.ReadFile(filepath.Join(dir, "token"))
	require.NoError(t, err)
	assert.Equal(t, "tok", string(data))
}

func TestFileTokenStoreTrimsWhitespace(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "token"), []byte("tok\n"), 0o600))

	s, err := NewFileTokenStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "tok", s.Token())
}

func TestMemoryTokenStore(t *testing.T) {
	s := &MemoryTokenStore{}
	assert.Empty(t, s.Token())

	require.NoError(t, s.Save("tok"))
	assert.Equal(t, "tok", s.Token())

	require.NoError(t, s.Clear())
	assert.Empty(t, s.Token())
}
