package session

import (
	"encoding/json"
	"sync"
)

// Storage is the persistence used for the credential and identity.
// app.BrowserStorage satisfies it in the browser.
type Storage interface {
	Get(key string, v any) error
	Set(key string, v any) error
	Del(key string)
}

// MemoryStorage is a Storage kept in process memory. Values are stored
// JSON-encoded so reads behave like window.localStorage.
type MemoryStorage struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string][]byte)}
}

func (s *MemoryStorage) Get(key string, v any) error {
	s.mu.Lock()
	b, ok := s.data[key]
	s.mu.Unlock()
	if !ok {
		return nil
	}
	return json.Unmarshal(b, v)
}

func (s *MemoryStorage) Set(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data[key] = b
	s.mu.Unlock()
	return nil
}

func (s *MemoryStorage) Del(key string) {
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
}

// Len returns the number of stored keys.
func (s *MemoryStorage) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}
