package cache

import (
	"context"
	"sync"
)

// MemoryStore хранит артефакты в памяти процесса в сжатом виде
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore создает пустое хранилище в памяти
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	value, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return Decompress(value)
}

func (m *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	compressed := Compress(value)
	m.mu.Lock()
	m.data[key] = compressed
	m.mu.Unlock()
	return nil
}

// Len возвращает количество ключей
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
