package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaveBychkov/friendly-dollop/pkg/sdk"
)

func TestFileStoreRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), DirName)
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	_, err = store.Load()
	require.ErrorIs(t, err, sdk.ErrNotLoggedIn)

	require.NoError(t, store.Save(&sdk.Session{Token: "abc", Username: "root"}))
	require.NoError(t, sdk.SetRole(store, sdk.RoleAdmin))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "abc", loaded.Token)
	assert.Equal(t, "root", loaded.Username)
	assert.True(t, loaded.IsAdmin)
	assert.False(t, loaded.CreatedAt.IsZero())

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	_, err = os.Stat(store.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	assert.False(t, sdk.IsAdmin(store))
}

func TestFileStoreCorrupted(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(store.Path(), []byte("{not json"), 0600))

	_, err = store.Load()
	require.Error(t, err)
	assert.NotErrorIs(t, err, sdk.ErrNotLoggedIn)
	_, ok := sdk.Token(store)
	assert.False(t, ok)
}

func TestFileStoreTokenless(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, sdk.SetAdmin(store, true))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.False(t, loaded.HasToken())
	assert.Equal(t, sdk.RoleAdmin, sdk.CurrentRole(store))

	_, ok := sdk.Token(store)
	assert.False(t, ok, "a role alone is not a login")

	reopened, err := NewFileStore(dir)
	require.NoError(t, err)
	assert.True(t, sdk.IsAdmin(reopened))
}
