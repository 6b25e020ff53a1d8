package store

import (
	"sync"

	"github.com/efreitasn/terminalsim/internal/domain"
)

// RiskHistory keeps risk snapshots newest first, evicting the oldest once
// the retention cap is reached. Eviction is silent.
type RiskHistory struct {
	mu        sync.RWMutex
	capacity  int
	snapshots []domain.RiskSnapshot // chronological; newest at the end
}

// NewRiskHistory creates a history retaining at most capacity snapshots.
// A non-positive capacity is treated as 1.
func NewRiskHistory(capacity int) *RiskHistory {
	if capacity < 1 {
		capacity = 1
	}
	return &RiskHistory{capacity: capacity}
}

// Capacity returns the retention bound.
func (h *RiskHistory) Capacity() int {
	return h.capacity
}

// Push appends snapshots in the given order and trims to capacity. It returns
// the number of snapshots evicted.
func (h *RiskHistory) Push(snaps ...domain.RiskSnapshot) int {
	if len(snaps) == 0 {
		return 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	h.snapshots = append(h.snapshots, snaps...)
	overflow := len(h.snapshots) - h.capacity
	if overflow <= 0 {
		return 0
	}
	// Copy into a fresh slice so the evicted prefix can be collected.
	kept := make([]domain.RiskSnapshot, h.capacity)
	copy(kept, h.snapshots[overflow:])
	h.snapshots = kept
	return overflow
}

// List returns snapshots newest first, optionally filtered by symbol and
// account. Empty filters match everything.
func (h *RiskHistory) List(symbol, accountID string) []domain.RiskSnapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]domain.RiskSnapshot, 0)
	for i := len(h.snapshots) - 1; i >= 0; i-- {
		if matches(h.snapshots[i], symbol, accountID) {
			out = append(out, h.snapshots[i])
		}
	}
	return out
}

// Latest returns the newest snapshot matching the filters.
func (h *RiskHistory) Latest(symbol, accountID string) (domain.RiskSnapshot, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for i := len(h.snapshots) - 1; i >= 0; i-- {
		if matches(h.snapshots[i], symbol, accountID) {
			return h.snapshots[i], true
		}
	}
	return domain.RiskSnapshot{}, false
}

// LatestByKey returns the newest snapshot for every (symbol, account).
func (h *RiskHistory) LatestByKey() map[domain.PositionKey]domain.RiskSnapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make(map[domain.PositionKey]domain.RiskSnapshot)
	for i := len(h.snapshots) - 1; i >= 0; i-- {
		k := h.snapshots[i].Key()
		if _, seen := out[k]; !seen {
			out[k] = h.snapshots[i]
		}
	}
	return out
}

// Len returns the number of retained snapshots.
func (h *RiskHistory) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.snapshots)
}

func matches(s domain.RiskSnapshot, symbol, accountID string) bool {
	if symbol != "" && s.Symbol != symbol {
		return false
	}
	if accountID != "" && s.AccountID != accountID {
		return false
	}
	return true
}
