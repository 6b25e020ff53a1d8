package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/efreitasn/terminalsim/internal/domain"
	"github.com/efreitasn/terminalsim/internal/service"
	"github.com/efreitasn/terminalsim/internal/view"
)

// AccountHandler serves registered accounts.
type AccountHandler struct {
	accounts *service.AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accounts *service.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

func fromSummary(s service.AccountSummary) view.Account {
	return view.FromAccount(s.Account, s.MarginUsed, s.MarginAvailable, s.OpenPositions)
}

// ListAccounts handles GET /accounts.
func (h *AccountHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	summaries := h.accounts.List()
	out := make([]view.Account, len(summaries))
	for i, s := range summaries {
		out[i] = fromSummary(s)
	}
	writeList(w, out)
}

// GetAccount handles GET /accounts/{account_id}.
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	s, err := h.accounts.Get(chi.URLParam(r, "account_id"))
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			WriteError(w, http.StatusNotFound, "account_not_found", err.Error())
			return
		}
		writeInternal(w)
		return
	}
	WriteJSON(w, http.StatusOK, fromSummary(s))
}
