package store

import (
	"encoding/json"
	"sync"
)

// MemoryBackend keeps encoded records in a map, intended for tests and dev runs.
type MemoryBackend struct {
	mu      sync.RWMutex
	records map[string][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{records: make(map[string][]byte)}
}

func (m *MemoryBackend) Load(key string, v interface{}) (bool, error) {
	m.mu.RLock()
	b, ok := m.records[key]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(b, v); err != nil {
		return true, err
	}
	return true, nil
}

func (m *MemoryBackend) Save(key string, v interface{}) error {
	if key == "" {
		return ErrInvalidKey
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[key] = b
	return nil
}

// Raw returns the stored bytes for key, or nil.
func (m *MemoryBackend) Raw(key string) []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]byte(nil), m.records[key]...)
}

// Put stores raw bytes under key without encoding them.
func (m *MemoryBackend) Put(key string, raw []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[key] = append([]byte(nil), raw...)
}
