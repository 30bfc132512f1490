package storage

import (
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryShard creates in-memory storages.
func MemoryShard() Shard {
	return func(shard string) (Persistence, error) {
		return NewMemoryStorage(), nil
	}
}

// MemoryStorage keeps the json encoding of every item in memory.
type MemoryStorage struct {
	files map[Key][]byte
	mutex *sync.RWMutex
}

// NewMemoryStorage creates a new in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		files: make(map[Key][]byte),
		mutex: new(sync.RWMutex),
	}
}

func (m *MemoryStorage) Store(k Key, value interface{}) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	bb, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("could not marshal value for '%+v': %w", k, err)
	}
	m.files[k] = bb
	return nil
}

func (m *MemoryStorage) Load(k Key, value interface{}) error {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	bb, ok := m.files[k]
	if !ok {
		return fmt.Errorf("not found '%+v': %w", k, NotFoundErr)
	}
	if err := json.Unmarshal(bb, value); err != nil {
		return fmt.Errorf("could not unmarshal value for '%+v': %v: %w", k, err, CouldNotLoadErr)
	}
	return nil
}
