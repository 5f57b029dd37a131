// Package config persists engine settings as flat dotted keys, for
// example "audio.output.device" or "audio.output.stream.sample_rate".
// Missing keys fall back to defaults at the point of use, so a fresh
// store is always valid.
package config

import "sync"

// Well-known keys.
const (
	KeyHost = "audio.host"

	KeyOutputDevice = "audio.output.device"
	KeyInputDevice  = "audio.input.device"

	KeyOutputChannels   = "audio.output.stream.channels"
	KeyOutputSampleRate = "audio.output.stream.sample_rate"
	KeyOutputBufferSize = "audio.output.stream.buffer_size"

	KeyInputChannels   = "audio.input.stream.channels"
	KeyInputSampleRate = "audio.input.stream.sample_rate"
	KeyInputBufferSize = "audio.input.stream.buffer_size"
)

// Store is a flat key/value settings store. Values are strings; callers
// parse them at the point of use and fall back to defaults on absence
// or parse failure.
type Store interface {
	// Get returns the value for key, reporting whether it is set.
	Get(key string) (string, bool)
	// Set stores value under key and persists it.
	Set(key, value string) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error
	// Keys returns every set key, unordered.
	Keys() []string
}

// GetDefault returns the value for key, or def when it is unset.
func GetDefault(s Store, key, def string) string {
	if v, ok := s.Get(key); ok {
		return v
	}
	return def
}

// MemoryStore is an in-memory Store for tests and ephemeral sessions.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *MemoryStore) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	return keys
}
