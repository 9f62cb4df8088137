package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps values in process memory. Used by tests and --memory runs.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryStore) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

// Update holds the write lock for the duration of fn and applies the staged
// writes only if fn returns nil.
func (m *MemoryStore) Update(ctx context.Context, fn func(tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memTx{base: m.data, staged: make(map[string][]byte), malformedKeys: malformedKeys{}}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	for k, v := range tx.staged {
		m.data[k] = v
	}
	return nil
}

func (m *MemoryStore) Keys(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

type memTx struct {
	base   map[string][]byte
	staged map[string][]byte
	malformedKeys
}

func (t *memTx) Get(_ context.Context, key string) ([]byte, bool, error) {
	if v, ok := t.staged[key]; ok {
		return append([]byte(nil), v...), true, nil
	}
	v, ok := t.base[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (t *memTx) Put(_ context.Context, key string, value []byte) error {
	t.staged[key] = append([]byte(nil), value...)
	return nil
}
