package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// Memory is an in-process Store with the same contract as Postgres. Records
// are kept as marshalled JSON so reads hand out copies, never shared
// pointers.
type Memory struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]map[string][]byte)}
}

func (m *Memory) Create(ctx context.Context, collection, key string, record any) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	coll, ok := m.data[collection]
	if !ok {
		coll = make(map[string][]byte)
		m.data[collection] = coll
	}
	if _, exists := coll[key]; exists {
		return ErrAlreadyExists
	}
	coll[key] = data
	return nil
}

func (m *Memory) Read(ctx context.Context, collection, key string, out any) error {
	m.mu.RLock()
	data, ok := m.data[collection][key]
	m.mu.RUnlock()

	if !ok {
		return ErrNotFound
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshal record: %w", err)
	}
	return nil
}

func (m *Memory) Update(ctx context.Context, collection, key string, record any) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	coll := m.data[collection]
	if _, exists := coll[key]; !exists {
		return ErrNotFound
	}
	coll[key] = data
	return nil
}

func (m *Memory) Delete(ctx context.Context, collection, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	coll := m.data[collection]
	if _, exists := coll[key]; !exists {
		return ErrNotFound
	}
	delete(coll, key)
	return nil
}

func (m *Memory) List(ctx context.Context, collection string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.data[collection]))
	for key := range m.data[collection] {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}
