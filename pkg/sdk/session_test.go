package sdk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()

	_, ok := Token(store)
	assert.False(t, ok)
	assert.False(t, IsAdmin(store))

	_, err := store.Load()
	require.ErrorIs(t, err, ErrNotLoggedIn)

	require.NoError(t, store.Save(&Session{Token: "abc"}))
	token, ok := Token(store)
	require.True(t, ok)
	assert.Equal(t, "abc", token)

	require.NoError(t, SetAdmin(store, true))
	assert.True(t, IsAdmin(store))

	require.NoError(t, store.Clear())
	_, ok = Token(store)
	assert.False(t, ok)
}

func TestEffectiveRole(t *testing.T) {
	tests := []struct {
		name    string
		session *Session
		want    Role
	}{
		{"nil session", nil, RoleUnknown},
		{"no claim", &Session{Token: "t"}, RoleUnknown},
		{"flag only", &Session{IsAdmin: true}, RoleAdmin},
		{"claim wins", &Session{IsAdmin: true, Role: RoleViewer}, RoleViewer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.session.EffectiveRole())
		})
	}
}

func TestSetRole(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Save(&Session{Token: "abc"}))

	require.NoError(t, SetRole(store, RoleAdmin))
	session, err := store.Load()
	require.NoError(t, err)
	assert.True(t, session.IsAdmin)
	assert.Equal(t, "abc", session.Token)

	require.NoError(t, SetRole(store, RoleViewer))
	assert.False(t, IsAdmin(store))
}

func TestSetToken(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Save(&Session{Token: "old", Role: RoleAdmin, IsAdmin: true, ServerURL: "http://api"}))

	require.NoError(t, SetToken(store, "new", "jdoe"))
	session, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "new", session.Token)
	assert.Equal(t, "jdoe", session.Username)
	assert.Equal(t, "http://api", session.ServerURL)
	assert.Equal(t, RoleUnknown, CurrentRole(store))

	require.NoError(t, SetAdmin(store, false))
	assert.Equal(t, RoleViewer, CurrentRole(store))
}

func TestMemoryStoreCopies(t *testing.T) {
	store := NewMemoryStore()
	session := &Session{Token: "abc"}
	require.NoError(t, store.Save(session))
	session.Token = "mutated"

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "abc", loaded.Token)
}
