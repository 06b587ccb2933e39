package session

import (
	"errors"
	"fmt"
	"sync"
)

// Local storage keys.
const (
	TokenKey = "token"
	UserKey  = "user"
)

var ErrEmptyToken = errors.New("session: empty token")

// Identity is the signed-in user as remembered by the browser.
type Identity struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Manager holds the current credential and identity. Both live in Storage
// and are present or absent together.
type Manager struct {
	mu       sync.RWMutex
	store    Storage
	token    string
	identity *Identity
}

// NewManager loads any session previously persisted in store. A token
// without an identity (or the reverse) is discarded.
func NewManager(store Storage) *Manager {
	m := &Manager{store: store}

	var token string
	var id Identity
	tokenErr := store.Get(TokenKey, &token)
	idErr := store.Get(UserKey, &id)

	switch {
	case tokenErr == nil && idErr == nil && token != "" && id != (Identity{}):
		m.token = token
		m.identity = &id
	case token != "" || id != (Identity{}) || tokenErr != nil || idErr != nil:
		store.Del(TokenKey)
		store.Del(UserKey)
	}
	return m
}

// Login persists token and identity, then makes them current.
func (m *Manager) Login(token string, id Identity) error {
	if token == "" {
		return ErrEmptyToken
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Set(TokenKey, token); err != nil {
		return fmt.Errorf("session: store token: %w", err)
	}
	if err := m.store.Set(UserKey, id); err != nil {
		// The previous session is gone with its token; drop the pair.
		m.store.Del(TokenKey)
		m.store.Del(UserKey)
		m.token = ""
		m.identity = nil
		return fmt.Errorf("session: store user: %w", err)
	}
	m.token = token
	m.identity = &id
	return nil
}

// Logout forgets the credential and identity.
func (m *Manager) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.store.Del(TokenKey)
	m.store.Del(UserKey)
	m.token = ""
	m.identity = nil
}

// Token returns the stored credential, or "" when signed out. Storage is
// read on every call so a token written elsewhere is picked up.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var token string
	if err := m.store.Get(TokenKey, &token); err != nil {
		return m.token
	}
	return token
}

func (m *Manager) Identity() (Identity, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.identity == nil {
		return Identity{}, false
	}
	return *m.identity, true
}

func (m *Manager) Authenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token != "" && m.identity != nil
}
