package storage

import (
	"sync"

	"github.com/pkg/errors"
)

// MemoryDB is an in-process Store.
type MemoryDB struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte
}

func NewMemoryDB() *MemoryDB {
	return &MemoryDB{data: make(map[string]map[string][]byte)}
}

func (m *MemoryDB) Close() error {
	return nil
}

func (m *MemoryDB) Write(namespace, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	bucket, ok := m.data[namespace]
	if !ok {
		bucket = make(map[string][]byte)
		m.data[namespace] = bucket
	}
	bucket[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryDB) Read(namespace, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[namespace][key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryDB) ReadAll(namespace string) (map[string][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make(map[string][]byte, len(m.data[namespace]))
	for k, v := range m.data[namespace] {
		result[k] = append([]byte(nil), v...)
	}
	return result, nil
}

func (m *MemoryDB) Delete(namespace, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	bucket, ok := m.data[namespace]
	if !ok {
		return errors.Errorf("namespace<%s> does not exist", namespace)
	}
	delete(bucket, key)
	return nil
}
