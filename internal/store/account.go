package store

import (
	"sort"
	"sync"

	"github.com/efreitasn/terminalsim/internal/domain"
)

// AccountStore is a thread-safe in-memory store for accounts, keyed by
// account ID. Accounts that were never registered fall back to the default
// equity so fills for ad-hoc accounts can still be margined.
type AccountStore struct {
	mu            sync.RWMutex
	accounts      map[string]*domain.Account
	defaultEquity float64
}

// NewAccountStore creates an empty AccountStore.
func NewAccountStore(defaultEquity float64) *AccountStore {
	return &AccountStore{
		accounts:      make(map[string]*domain.Account),
		defaultEquity: defaultEquity,
	}
}

// Create adds an account. It returns domain.ErrAccountExists if an account
// with the same ID already exists.
func (s *AccountStore) Create(a *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[a.AccountID]; exists {
		return domain.ErrAccountExists
	}
	c := *a
	s.accounts[a.AccountID] = &c
	return nil
}

// Get retrieves an account by ID. It returns domain.ErrAccountNotFound if
// the account does not exist.
func (s *AccountStore) Get(id string) (domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}
	return *a, nil
}

// Exists returns true if an account with the given ID exists.
func (s *AccountStore) Exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.accounts[id]
	return ok
}

// Equity returns the account's equity, or the default equity for unknown accounts.
func (s *AccountStore) Equity(id string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if a, ok := s.accounts[id]; ok {
		return a.Equity
	}
	return s.defaultEquity
}

// List returns all accounts ordered by ID.
func (s *AccountStore) List() []domain.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountID < out[j].AccountID })
	return out
}
