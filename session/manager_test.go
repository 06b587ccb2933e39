package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var alice = Identity{ID: 7, Username: "alice", Email: "alice@example.com"}

func TestLoginPersistsTokenAndIdentity(t *testing.T) {
	store := NewMemoryStorage()
	m := NewManager(store)
	require.False(t, m.Authenticated())

	require.NoError(t, m.Login("tok-1", alice))

	var token string
	var id Identity
	require.NoError(t, store.Get(TokenKey, &token))
	require.NoError(t, store.Get(UserKey, &id))
	assert.Equal(t, "tok-1", token)
	assert.Equal(t, alice, id)

	assert.True(t, m.Authenticated())
	assert.Equal(t, "tok-1", m.Token())
	got, ok := m.Identity()
	assert.True(t, ok)
	assert.Equal(t, alice, got)
}

func TestLogoutClearsBoth(t *testing.T) {
	store := NewMemoryStorage()
	m := NewManager(store)
	require.NoError(t, m.Login("tok-1", alice))

	m.Logout()

	assert.Equal(t, 0, store.Len())
	assert.False(t, m.Authenticated())
	assert.Empty(t, m.Token())
	_, ok := m.Identity()
	assert.False(t, ok)
}

func TestLoginRejectsEmptyToken(t *testing.T) {
	m := NewManager(NewMemoryStorage())
	err := m.Login("", alice)
	assert.ErrorIs(t, err, ErrEmptyToken)
	assert.False(t, m.Authenticated())
}

func TestNewManagerRestoresSession(t *testing.T) {
	store := NewMemoryStorage()
	require.NoError(t, NewManager(store).Login("tok-2", alice))

	m := NewManager(store)
	assert.True(t, m.Authenticated())
	assert.Equal(t, "tok-2", m.Token())
	got, _ := m.Identity()
	assert.Equal(t, alice, got)
}

func TestNewManagerDiscardsHalfSession(t *testing.T) {
	store := NewMemoryStorage()
	require.NoError(t, store.Set(TokenKey, "orphan"))

	m := NewManager(store)
	assert.False(t, m.Authenticated())
	assert.Equal(t, 0, store.Len())
}

func TestTokenReadsStorage(t *testing.T) {
	store := NewMemoryStorage()
	m := NewManager(store)

	require.NoError(t, store.Set(TokenKey, "from-other-tab"))
	assert.Equal(t, "from-other-tab", m.Token())
}

type failingStorage struct {
	*MemoryStorage
	failKey string
}

func (s failingStorage) Set(key string, v any) error {
	if key == s.failKey {
		return errors.New("quota exceeded")
	}
	return s.MemoryStorage.Set(key, v)
}

func TestLoginRollsBackTokenWhenUserWriteFails(t *testing.T) {
	store := failingStorage{MemoryStorage: NewMemoryStorage(), failKey: UserKey}
	m := NewManager(store)

	err := m.Login("tok-3", alice)
	require.Error(t, err)
	assert.Equal(t, 0, store.Len())
	assert.False(t, m.Authenticated())
	assert.Empty(t, m.Token())
}

func TestFailedReloginClearsPreviousSession(t *testing.T) {
	store := failingStorage{MemoryStorage: NewMemoryStorage()}
	m := NewManager(store)
	require.NoError(t, m.Login("tok-1", alice))

	store.failKey = UserKey
	m.store = store
	require.Error(t, m.Login("tok-2", Identity{ID: 8, Username: "bob", Email: "bob@example.com"}))

	assert.Equal(t, 0, store.Len())
	assert.False(t, m.Authenticated())
	assert.Empty(t, m.Token())
	_, ok := m.Identity()
	assert.False(t, ok)

	var user Identity
	require.NoError(t, store.Get(UserKey, &user))
	assert.Zero(t, user)
}
