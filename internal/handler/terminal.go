package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/efreitasn/terminalsim/internal/domain"
	"github.com/efreitasn/terminalsim/internal/service"
	"github.com/efreitasn/terminalsim/internal/view"
)

// TerminalHandler serves the watchlist, market data and blotter queries.
type TerminalHandler struct {
	terminal *service.TerminalService
	risk     *service.RiskService
}

// NewTerminalHandler creates a new TerminalHandler.
func NewTerminalHandler(terminal *service.TerminalService, risk *service.RiskService) *TerminalHandler {
	return &TerminalHandler{terminal: terminal, risk: risk}
}

type watchlistRequest struct {
	Symbols []string `json:"symbols"`
}

type moveRequest struct {
	From *int `json:"from"`
	To   *int `json:"to"`
}

type watchlistResponse struct {
	Symbols []string `json:"symbols"`
}

type riskSummaryResponse struct {
	TotalUnrealizedPnl float64 `json:"total_unrealized_pnl"`
	TotalRealizedPnl   float64 `json:"total_realized_pnl"`
	MarginUsed         float64 `json:"margin_used"`
	MarginAvailable    float64 `json:"margin_available"`
	MarginUtilization  float64 `json:"margin_utilization"`
	PnlWarning         bool    `json:"pnl_warning"`
	MarginWarning      bool    `json:"margin_warning"`
	Positions          int     `json:"positions"`
}

func writeWatchlist(w http.ResponseWriter, symbols []string) {
	if symbols == nil {
		symbols = []string{}
	}
	WriteJSON(w, http.StatusOK, watchlistResponse{Symbols: symbols})
}

// GetWatchlist handles GET /watchlist.
func (h *TerminalHandler) GetWatchlist(w http.ResponseWriter, r *http.Request) {
	writeWatchlist(w, h.terminal.Watchlist())
}

// SetWatchlist handles PUT /watchlist.
func (h *TerminalHandler) SetWatchlist(w http.ResponseWriter, r *http.Request) {
	var req watchlistRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}
	symbols, err := h.terminal.SetWatchlist(req.Symbols)
	if err != nil {
		mapTerminalError(w, err)
		return
	}
	writeWatchlist(w, symbols)
}

// AddSymbol handles POST /watchlist/{symbol}.
func (h *TerminalHandler) AddSymbol(w http.ResponseWriter, r *http.Request) {
	symbols, err := h.terminal.AddSymbol(chi.URLParam(r, "symbol"))
	if err != nil {
		mapTerminalError(w, err)
		return
	}
	writeWatchlist(w, symbols)
}

// RemoveSymbol handles DELETE /watchlist/{symbol}.
func (h *TerminalHandler) RemoveSymbol(w http.ResponseWriter, r *http.Request) {
	symbols, err := h.terminal.RemoveSymbol(chi.URLParam(r, "symbol"))
	if err != nil {
		mapTerminalError(w, err)
		return
	}
	writeWatchlist(w, symbols)
}

// MoveSymbol handles POST /watchlist/move.
func (h *TerminalHandler) MoveSymbol(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}
	if req.From == nil || req.To == nil {
		writeValidation(w, "from and to are required")
		return
	}
	symbols, err := h.terminal.MoveSymbol(*req.From, *req.To)
	if err != nil {
		mapTerminalError(w, err)
		return
	}
	writeWatchlist(w, symbols)
}

// ListTicks handles GET /ticks.
func (h *TerminalHandler) ListTicks(w http.ResponseWriter, r *http.Request) {
	writeList(w, view.Ticks(h.terminal.Ticks()))
}

// GetTick handles GET /ticks/{symbol}.
func (h *TerminalHandler) GetTick(w http.ResponseWriter, r *http.Request) {
	tick, err := h.terminal.Tick(chi.URLParam(r, "symbol"))
	if err != nil {
		mapTerminalError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, view.FromTick(tick))
}

// ListFills handles GET /fills?order_id=&symbol=.
func (h *TerminalHandler) ListFills(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeList(w, view.Fills(h.terminal.Fills(q.Get("order_id"), q.Get("symbol"))))
}

// ListPositions handles GET /positions.
func (h *TerminalHandler) ListPositions(w http.ResponseWriter, r *http.Request) {
	writeList(w, view.Positions(h.terminal.Positions()))
}

// GetPosition handles GET /positions/{symbol}?account_id=.
func (h *TerminalHandler) GetPosition(w http.ResponseWriter, r *http.Request) {
	p, err := h.terminal.Position(chi.URLParam(r, "symbol"), r.URL.Query().Get("account_id"))
	if err != nil {
		mapTerminalError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, view.FromPosition(p))
}

// ListRisk handles GET /risk?symbol=&account_id=.
func (h *TerminalHandler) ListRisk(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeList(w, view.RiskSnapshots(h.terminal.RiskHistory(q.Get("symbol"), q.Get("account_id"))))
}

// LatestRisk handles GET /risk/latest?symbol=&account_id=.
func (h *TerminalHandler) LatestRisk(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	snap, err := h.terminal.LatestRisk(q.Get("symbol"), q.Get("account_id"))
	if err != nil {
		mapTerminalError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, view.FromRiskSnapshot(snap))
}

// RiskSummary handles GET /risk/summary.
func (h *TerminalHandler) RiskSummary(w http.ResponseWriter, r *http.Request) {
	s := h.risk.Summary()
	WriteJSON(w, http.StatusOK, riskSummaryResponse{
		TotalUnrealizedPnl: s.TotalUnrealizedPnl,
		TotalRealizedPnl:   s.TotalRealizedPnl,
		MarginUsed:         s.MarginUsed,
		MarginAvailable:    s.MarginAvailable,
		MarginUtilization:  s.MarginUtilization,
		PnlWarning:         s.PnlWarning,
		MarginWarning:      s.MarginWarning,
		Positions:          s.Positions,
	})
}

// GetConnection handles GET /connection.
func (h *TerminalHandler) GetConnection(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, view.FromConnection(h.terminal.Connection()))
}

// mapTerminalError maps domain errors to HTTP responses for terminal endpoints.
func mapTerminalError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		writeValidation(w, validationErr.Message)
		return
	}

	switch {
	case errors.Is(err, domain.ErrTickNotFound):
		WriteError(w, http.StatusNotFound, "tick_not_found", err.Error())
	case errors.Is(err, domain.ErrPositionNotFound):
		WriteError(w, http.StatusNotFound, "position_not_found", err.Error())
	case errors.Is(err, domain.ErrSnapshotNotFound):
		WriteError(w, http.StatusNotFound, "risk_snapshot_not_found", err.Error())
	case errors.Is(err, domain.ErrSymbolNotWatched):
		WriteError(w, http.StatusNotFound, "symbol_not_watched", err.Error())
	default:
		writeInternal(w)
	}
}
