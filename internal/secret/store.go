// Package secret keeps mirror passwords out of the SQLite database.
package secret

import (
	"os"
	"strings"
	"sync"
)

// SecretStore stores sensitive values such as mirror passwords, keyed by
// mirror target id.
type SecretStore interface {
	Set(key string, value []byte) error

	// Get returns an empty slice and nil error if key does not exist.
	Get(key string) ([]byte, error)

	Delete(key string) error
}

// MemoryStore keeps secrets for the lifetime of the process.
type MemoryStore struct {
	mu sync.Mutex
	m  map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: make(map[string][]byte)}
}

func (s *MemoryStore) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = append([]byte(nil), value...)
	return nil
}

func (s *MemoryStore) Get(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.m[key]...), nil
}

func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}

// EnvStore reads secrets from PHOTODESIGNER_SECRET_<KEY> environment
// variables and falls back to another store. Writes go to the fallback.
// Used by the headless CLI where no keychain is available.
type EnvStore struct {
	Fallback SecretStore
}

// EnvName returns the variable consulted for key.
func EnvName(key string) string {
	r := strings.NewReplacer("-", "_", ".", "_", "/", "_")
	return "PHOTODESIGNER_SECRET_" + strings.ToUpper(r.Replace(key))
}

func (s EnvStore) Get(key string) ([]byte, error) {
	if v, ok := os.LookupEnv(EnvName(key)); ok {
		return []byte(v), nil
	}
	if s.Fallback == nil {
		return nil, nil
	}
	return s.Fallback.Get(key)
}

func (s EnvStore) Set(key string, value []byte) error {
	if s.Fallback == nil {
		return nil
	}
	return s.Fallback.Set(key, value)
}

func (s EnvStore) Delete(key string) error {
	if s.Fallback == nil {
		return nil
	}
	return s.Fallback.Delete(key)
}
