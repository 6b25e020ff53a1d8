package service

import (
	"github.com/efreitasn/terminalsim/internal/domain"
	"github.com/efreitasn/terminalsim/internal/store"
)

// AccountSummary is an account with the margin its positions consume.
type AccountSummary struct {
	Account         domain.Account
	MarginUsed      float64
	MarginAvailable float64
	OpenPositions   int
}

// AccountService serves registered accounts and their margin usage.
type AccountService struct {
	gate      Gate
	accounts  *store.AccountStore
	positions *store.PositionStore
}

// NewAccountService creates a new AccountService.
func NewAccountService(gate Gate, accounts *store.AccountStore, positions *store.PositionStore) *AccountService {
	return &AccountService{gate: gate, accounts: accounts, positions: positions}
}

// Get returns one account's summary or domain.ErrAccountNotFound.
func (s *AccountService) Get(accountID string) (AccountSummary, error) {
	var (
		out AccountSummary
		err error
	)
	s.gate.Read(func() {
		var a domain.Account
		a, err = s.accounts.Get(accountID)
		if err != nil {
			return
		}
		out = s.summarize(a, s.positions.List())
	})
	return out, err
}

// List returns every registered account ordered by ID.
func (s *AccountService) List() []AccountSummary {
	var out []AccountSummary
	s.gate.Read(func() {
		positions := s.positions.List()
		for _, a := range s.accounts.List() {
			out = append(out, s.summarize(a, positions))
		}
	})
	return out
}

func (s *AccountService) summarize(a domain.Account, positions []domain.Position) AccountSummary {
	sum := AccountSummary{Account: a}
	for i := range positions {
		p := &positions[i]
		if p.AccountID != a.AccountID {
			continue
		}
		sum.MarginUsed += p.MarginUsed
		if !p.IsFlat() {
			sum.OpenPositions++
		}
	}
	sum.MarginUsed = domain.RoundMoney(sum.MarginUsed)
	sum.MarginAvailable = a.MarginAvailable(sum.MarginUsed)
	return sum
}
