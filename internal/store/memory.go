package store

import (
	"context"
	"sort"
	"sync"
)

// Memory is an in-process Store keyed like the DynamoDB table. Query results
// follow the same lexicographic sort-key order DynamoDB uses.
type Memory struct {
	mu    sync.RWMutex
	parts map[string]map[string]Attributes
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{parts: map[string]map[string]Attributes{}}
}

// Put stores item, replacing any existing item with the same key.
func (m *Memory) Put(_ context.Context, item Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(item)
	return nil
}

// Create stores item unless its key is taken.
func (m *Memory) Create(_ context.Context, item Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.parts[item.PK][item.SK]; ok {
		return ErrExists
	}
	m.put(item)
	return nil
}

func (m *Memory) put(item Item) {
	p, ok := m.parts[item.PK]
	if !ok {
		p = map[string]Attributes{}
		m.parts[item.PK] = p
	}
	p[item.SK] = copyAttrs(item.Attrs)
}

// Get returns the item for (pk, sk) or ErrNotFound.
func (m *Memory) Get(_ context.Context, pk, sk string) (Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	attrs, ok := m.parts[pk][sk]
	if !ok {
		return Item{}, ErrNotFound
	}
	return Item{PK: pk, SK: sk, Attrs: copyAttrs(attrs)}, nil
}

// Query returns the partition's items matching q in sort-key order.
func (m *Memory) Query(_ context.Context, pk string, q Query) ([]Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.parts[pk]))
	for sk := range m.parts[pk] {
		if q.Condition.Matches(sk) {
			keys = append(keys, sk)
		}
	}
	sort.Strings(keys)
	if q.Descending {
		sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	}
	if q.Limit > 0 && len(keys) > q.Limit {
		keys = keys[:q.Limit]
	}
	out := make([]Item, 0, len(keys))
	for _, sk := range keys {
		out = append(out, Item{PK: pk, SK: sk, Attrs: copyAttrs(m.parts[pk][sk])})
	}
	return out, nil
}

// Delete removes (pk, sk); deleting a missing item is not an error.
func (m *Memory) Delete(_ context.Context, pk, sk string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.parts[pk], sk)
	return nil
}

func copyAttrs(in Attributes) Attributes {
	out := make(Attributes, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

var _ Store = (*Memory)(nil)
