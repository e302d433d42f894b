package inventory

import (
	"context"
	"fmt"
	"sync"

	"fastrecycle-hq/salvage/pkg/classify"
	"fastrecycle-hq/salvage/pkg/rules"
)

// Memory is an in-memory container. Items keep their insertion order.
type Memory struct {
	mu    sync.Mutex
	name  string
	items []classify.Item
}

// NewMemory creates a container holding a copy of items.
func NewMemory(name string, items ...classify.Item) *Memory {
	m := &Memory{name: name}
	m.items = append(m.items, items...)
	return m
}

// Name implements recycle.Target.
func (m *Memory) Name() string {
	return m.name
}

// Enumerate implements recycle.Container.
func (m *Memory) Enumerate(ctx context.Context) ([]classify.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot(), nil
}

// Items is Enumerate without a context.
func (m *Memory) Items() []classify.Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot()
}

func (m *Memory) snapshot() []classify.Item {
	out := make([]classify.Item, len(m.items))
	for i, it := range m.items {
		it.Tags = append([]classify.Tag(nil), it.Tags...)
		out[i] = it
	}
	return out
}

// Count returns the total quantity held for itemID.
func (m *Memory) Count(itemID string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, it := range m.items {
		if it.ID == itemID {
			n += it.Quantity
		}
	}
	return n
}

// Remove implements recycle.Container. Entries sharing the identity are
// drained in order; an entry that reaches zero is dropped.
func (m *Memory) Remove(ctx context.Context, itemID string, quantity int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var held int64
	for _, it := range m.items {
		if it.ID == itemID {
			held += it.Quantity
		}
	}
	if held < quantity {
		return fmt.Errorf("%w: %q holds %d, asked %d", ErrInsufficient, itemID, held, quantity)
	}

	kept := m.items[:0]
	for _, it := range m.items {
		if it.ID == itemID && quantity > 0 {
			take := min(it.Quantity, quantity)
			it.Quantity -= take
			quantity -= take
		}
		if it.Quantity > 0 {
			kept = append(kept, it)
		}
	}
	m.items = kept
	return nil
}

// Add implements recycle.Container. An existing entry for the entity grows;
// otherwise a misc item named after the entity is appended.
func (m *Memory) Add(ctx context.Context, entity rules.Handle, quantity int64) error {
	if quantity <= 0 {
		return fmt.Errorf("add %q: quantity %d is not positive", entity.EntityID(), quantity)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	id := entity.EntityID()
	for i := range m.items {
		if m.items[i].ID == id {
			m.items[i].Quantity += quantity
			return nil
		}
	}
	item := classify.Item{
		ID:       id,
		Name:     entity.DisplayName(),
		Quantity: quantity,
		Category: classify.CategoryMisc,
		Playable: true,
	}
	if w, ok := entity.(Weighted); ok {
		item.UnitWeight = w.UnitWeight()
	}
	m.items = append(m.items, item)
	return nil
}
