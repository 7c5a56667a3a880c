// ABOUTME: JSON blob helpers over the KV store
// ABOUTME: Automation rules and responder settings each live under one key

package charm

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v3"
)

// Settings keys.
const (
	KeyAutomationRules   = "automation_rules"
	KeyResponderSettings = "responder_settings"
)

// Store is what callers need to persist a settings blob.
type Store interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
}

// GetJSON decodes the blob under key into v. It reports false, leaving v
// untouched, when the key has never been written.
func GetJSON(s Store, key string, v any) (bool, error) {
	data, err := s.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if len(data) == 0 {
		return false, nil
	}

	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON replaces the blob under key with the encoding of v.
func SetJSON(s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.Set([]byte(key), data); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// MemoryStore keeps blobs in a map. Dry runs and tests use it when no KV
// database is wanted.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Get(key []byte) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[string(key)]
	if !ok {
		return nil, badger.ErrKeyNotFound
	}
	return v, nil
}

func (m *MemoryStore) Set(key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[string(key)] = append([]byte(nil), value...)
	return nil
}
