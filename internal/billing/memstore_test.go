package billing

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ganesh5491/vyapar-sub000/internal/platform/store"
)

// memoryStore is an in-memory store.Store with per-family error injection,
// used to drive the compensation paths.
type memoryStore struct {
	mu          sync.Mutex
	collections map[string]*store.Collection
	failWrites  map[string]error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		collections: make(map[string]*store.Collection),
		failWrites:  make(map[string]error),
	}
}

func (m *memoryStore) failWritesOn(family string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWrites[family] = err
}

func cloneCollection(col *store.Collection) *store.Collection {
	return &store.Collection{
		Items:      append([]json.RawMessage(nil), col.Items...),
		NextNumber: col.NextNumber,
	}
}

func (m *memoryStore) ReadCollection(ctx context.Context, family string) (*store.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	col, ok := m.collections[family]
	if !ok {
		return store.NewCollection(), nil
	}
	return cloneCollection(col), nil
}

func (m *memoryStore) WriteCollection(ctx context.Context, family string, col *store.Collection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failWrites[family]; err != nil {
		return err
	}
	m.collections[family] = cloneCollection(col)
	return nil
}

func (m *memoryStore) Update(ctx context.Context, family string, fn func(col *store.Collection) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failWrites[family]; err != nil {
		return err
	}
	col, ok := m.collections[family]
	if !ok {
		col = store.NewCollection()
	}
	next := cloneCollection(col)
	if err := fn(next); err != nil {
		return err
	}
	m.collections[family] = next
	return nil
}
