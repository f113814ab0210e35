package store

import "sync"

// MemorySecrets is an in-memory SecretStore.
type MemorySecrets struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemorySecrets() *MemorySecrets {
	return &MemorySecrets{data: make(map[string][]byte)}
}

func (m *MemorySecrets) Put(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemorySecrets) Get(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemorySecrets) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; ok {
		clear(v)
		delete(m.data, key)
	}
	return nil
}

// Len reports the number of stored secrets. Intended for tests.
func (m *MemorySecrets) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

// MemoryConfig is an in-memory ConfigStore.
type MemoryConfig struct {
	mu   sync.Mutex
	data map[string]string
}

func NewMemoryConfig() *MemoryConfig {
	return &MemoryConfig{data: make(map[string]string)}
}

func (m *MemoryConfig) Put(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryConfig) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryConfig) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MemoryConfig) RemoveAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]string)
	return nil
}

// Len reports the number of stored entries. Intended for tests.
func (m *MemoryConfig) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}
