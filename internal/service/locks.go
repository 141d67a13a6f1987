package service

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

// ProductLocks serializes stock-affecting writers per product. Two sales of
// the same product must not race past the stock check, so every writer takes
// the product's mutex before reading the balance it will fold onto.
//
// The ledger and the sale processor share one instance; locks are acquired
// in sorted ID order so multi-product sales cannot deadlock each other.
type ProductLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewProductLocks() *ProductLocks {
	return &ProductLocks{locks: make(map[uuid.UUID]*sync.Mutex)}
}

func (p *ProductLocks) get(id uuid.UUID) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	m, ok := p.locks[id]
	if !ok {
		m = &sync.Mutex{}
		p.locks[id] = m
	}
	return m
}

// Lock acquires the mutexes for the given products and returns the unlock
// function. Duplicate IDs are collapsed.
func (p *ProductLocks) Lock(ids ...uuid.UUID) func() {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	uniq := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		uniq = append(uniq, id)
	}
	sort.Slice(uniq, func(i, j int) bool { return uniq[i].String() < uniq[j].String() })

	acquired := make([]*sync.Mutex, 0, len(uniq))
	for _, id := range uniq {
		m := p.get(id)
		m.Lock()
		acquired = append(acquired, m)
	}
	return func() {
		for i := len(acquired) - 1; i >= 0; i-- {
			acquired[i].Unlock()
		}
	}
}
