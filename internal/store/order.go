package store

import (
	"sync"
	"time"

	"github.com/efreitasn/terminalsim/internal/domain"
	"github.com/google/btree"
)

// orderEntry is the btree key for an order: insertion sequence plus ID.
type orderEntry struct {
	seq uint64
	id  string
}

// newestFirst orders entries by descending insertion sequence, so Ascend
// walks the blotter from the most recent order back.
func newestFirst(a, b orderEntry) bool {
	if a.seq != b.seq {
		return a.seq > b.seq
	}
	return a.id < b.id
}

// OrderStore is a thread-safe in-memory store for orders with a primary index
// by ID, a newest-first index over every order and a second index restricted
// to working (non-terminal) orders. Callers always receive copies.
type OrderStore struct {
	mu      sync.RWMutex
	seq     uint64
	orders  map[string]*domain.Order
	entries map[string]orderEntry
	all     *btree.BTreeG[orderEntry]
	working *btree.BTreeG[orderEntry]
}

// NewOrderStore creates an empty OrderStore.
func NewOrderStore() *OrderStore {
	const degree = 32
	return &OrderStore{
		orders:  make(map[string]*domain.Order),
		entries: make(map[string]orderEntry),
		all:     btree.NewG[orderEntry](degree, newestFirst),
		working: btree.NewG[orderEntry](degree, newestFirst),
	}
}

// Add stores a new order. It returns domain.ErrOrderAlreadyExists if an
// order with the same ID is already present.
func (s *OrderStore) Add(o *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orders[o.ID]; exists {
		return domain.ErrOrderAlreadyExists
	}
	s.seq++
	e := orderEntry{seq: s.seq, id: o.ID}
	s.orders[o.ID] = o.Clone()
	s.entries[o.ID] = e
	s.all.ReplaceOrInsert(e)
	if o.Status.IsWorking() {
		s.working.ReplaceOrInsert(e)
	}
	return nil
}

// Get retrieves a copy of an order by ID. It returns
// domain.ErrOrderNotFound if the order does not exist.
func (s *OrderStore) Get(id string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return o.Clone(), nil
}

// List returns every order, newest first.
func (s *OrderStore) List() []*domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(s.all)
}

// Working returns the orders in PENDING, LIVE or PARTIALLY_FILLED, newest first.
func (s *OrderStore) Working() []*domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(s.working)
}

// Len returns the number of stored orders.
func (s *OrderStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}

// Update applies a single patch and returns the updated copy. A patch that
// would move the order backwards, or touch a terminal order, returns
// domain.ErrIllegalTransition and leaves the order unchanged.
func (s *OrderStore) Update(id string, patch domain.OrderPatch, now time.Time) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	if err := s.applyLocked(o, patch, now); err != nil {
		return nil, err
	}
	return o.Clone(), nil
}

// ApplyPatches applies every update under one write lock so that readers
// observe either none or all of them. Unknown IDs and illegal transitions
// are skipped. The updated orders are returned in the order the updates
// were given.
func (s *OrderStore) ApplyPatches(updates []domain.OrderUpdate, now time.Time) []*domain.Order {
	if len(updates) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := make([]*domain.Order, 0, len(updates))
	for _, u := range updates {
		o, ok := s.orders[u.ID]
		if !ok {
			continue
		}
		if err := s.applyLocked(o, u.Patch, now); err != nil {
			continue
		}
		changed = append(changed, o.Clone())
	}
	return changed
}

// applyLocked checks the status transition, patches o and keeps the working
// index in sync. Caller must hold the write lock.
func (s *OrderStore) applyLocked(o *domain.Order, patch domain.OrderPatch, now time.Time) error {
	if o.Status.IsTerminal() {
		return domain.ErrIllegalTransition
	}
	if patch.Status != nil && *patch.Status != o.Status && !domain.CanTransition(o.Status, *patch.Status) {
		return domain.ErrIllegalTransition
	}
	patch.Apply(o, now)
	if !o.Status.IsWorking() {
		s.working.Delete(s.entries[o.ID])
	}
	return nil
}

func (s *OrderStore) collect(tree *btree.BTreeG[orderEntry]) []*domain.Order {
	result := make([]*domain.Order, 0, tree.Len())
	tree.Ascend(func(e orderEntry) bool {
		result = append(result, s.orders[e.id].Clone())
		return true
	})
	return result
}
