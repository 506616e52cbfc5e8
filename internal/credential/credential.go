// Package credential keeps the GitHub token for the lifetime of the
// process. Nothing is written to disk.
package credential

import (
	"os"
	"strings"
	"sync"
)

type Store struct {
	mu    sync.RWMutex
	token string
}

func NewStore() *Store {
	return &Store{}
}

// FromEnv returns a store seeded from the named environment variable.
// An empty name or unset variable gives an empty store.
func FromEnv(name string) *Store {
	s := NewStore()
	if name != "" {
		s.Set(os.Getenv(name))
	}
	return s
}

// Token returns the stored token. Blank tokens count as absent.
func (s *Store) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

func (s *Store) Set(token string) {
	s.mu.Lock()
	s.token = strings.TrimSpace(token)
	s.mu.Unlock()
}

func (s *Store) Clear() {
	s.Set("")
}
