package materialorders

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Repository for local runs and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	orders  map[string]MaterialOrder
	nowFunc func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		orders:  make(map[string]MaterialOrder),
		nowFunc: time.Now,
	}
}

// Create stores o under a fresh id.
func (m *MemoryStore) Create(ctx context.Context, o MaterialOrder) (*MaterialOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.nowFunc().UTC()
	o.ID = uuid.NewString()
	o.CreatedAt = now
	o.UpdatedAt = now
	m.orders[o.ID] = o
	return &o, nil
}

// List returns all orders.
func (m *MemoryStore) List(ctx context.Context) ([]MaterialOrder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]MaterialOrder, 0, len(m.orders))
	for _, o := range m.orders {
		out = append(out, o)
	}
	return out, nil
}

// Get retrieves an order by id.
func (m *MemoryStore) Get(ctx context.Context, id string) (*MaterialOrder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &o, nil
}

// Update merges p into the stored order.
func (m *MemoryStore) Update(ctx context.Context, id string, p Patch) (*MaterialOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	if p.IsEmpty() {
		return &o, nil
	}
	p.Apply(&o)
	o.UpdatedAt = m.nowFunc().UTC()
	m.orders[id] = o
	return &o, nil
}

// Delete removes an order by id.
func (m *MemoryStore) Delete(ctx context.Context, id string) (*MaterialOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(m.orders, id)
	return &o, nil
}
