package service

import (
	"errors"
	"reflect"
	"testing"

	"github.com/efreitasn/terminalsim/internal/domain"
)

func TestTerminal_AddSymbolQuotesImmediately(t *testing.T) {
	env := newTestEnv("AAPL")

	list, err := env.terminal.AddSymbol("nvda")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(list, []string{"AAPL", "NVDA"}) {
		t.Errorf("watchlist = %v", list)
	}

	tick, err := env.terminal.Tick("NVDA")
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if tick.Last != 138 || !tick.Timestamp.Equal(t0) {
		t.Errorf("tick last/ts = %v/%v, want 138/%v", tick.Last, tick.Timestamp, t0)
	}

	list, err = env.terminal.AddSymbol("NVDA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(list, []string{"AAPL", "NVDA"}) {
		t.Errorf("adding twice changed the list: %v", list)
	}
}

func TestTerminal_AddSymbolInvalid(t *testing.T) {
	env := newTestEnv()
	_, err := env.terminal.AddSymbol("not a symbol")
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestTerminal_SetRemoveMove(t *testing.T) {
	env := newTestEnv()

	list, err := env.terminal.SetWatchlist([]string{"tsla", "META", "TSLA"})
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if !reflect.DeepEqual(list, []string{"TSLA", "META"}) {
		t.Errorf("watchlist = %v, want [TSLA META]", list)
	}
	if _, err := env.terminal.Tick("META"); err != nil {
		t.Errorf("replaced symbols must be quoted: %v", err)
	}

	if _, err := env.terminal.SetWatchlist([]string{"OK", "b@d"}); err == nil {
		t.Error("expected error for invalid symbol")
	}
	if got := env.terminal.Watchlist(); !reflect.DeepEqual(got, []string{"TSLA", "META"}) {
		t.Errorf("invalid set changed the list: %v", got)
	}

	list, err = env.terminal.MoveSymbol(1, 0)
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if !reflect.DeepEqual(list, []string{"META", "TSLA"}) {
		t.Errorf("after move = %v", list)
	}
	if _, err := env.terminal.MoveSymbol(0, 5); err == nil {
		t.Error("expected error for out-of-range move")
	}

	list, err = env.terminal.RemoveSymbol("meta")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !reflect.DeepEqual(list, []string{"TSLA"}) {
		t.Errorf("after remove = %v", list)
	}
	if _, err := env.terminal.RemoveSymbol("META"); !errors.Is(err, domain.ErrSymbolNotWatched) {
		t.Errorf("expected ErrSymbolNotWatched, got %v", err)
	}
}

func TestTerminal_TicksFollowWatchlistOrder(t *testing.T) {
	env := newTestEnv("MSFT", "AAPL", "TSLA")
	env.stores.Ticks.Merge([]domain.Tick{
		{Symbol: "AAPL", Last: 185},
		{Symbol: "MSFT", Last: 415},
		{Symbol: "GOOGL", Last: 172},
	})

	ticks := env.terminal.Ticks()
	if len(ticks) != 2 {
		t.Fatalf("ticks = %d, want 2", len(ticks))
	}
	if ticks[0].Symbol != "MSFT" || ticks[1].Symbol != "AAPL" {
		t.Errorf("order = %s,%s, want MSFT,AAPL", ticks[0].Symbol, ticks[1].Symbol)
	}

	if _, err := env.terminal.Tick("TSLA"); !errors.Is(err, domain.ErrTickNotFound) {
		t.Errorf("expected ErrTickNotFound, got %v", err)
	}
}

func TestTerminal_FillFilters(t *testing.T) {
	env := newTestEnv()
	env.stores.Fills.Append(
		domain.Fill{ID: "f1", OrderID: "o1", Symbol: "AAPL", Qty: 1},
		domain.Fill{ID: "f2", OrderID: "o2", Symbol: "MSFT", Qty: 1},
		domain.Fill{ID: "f3", OrderID: "o1", Symbol: "AAPL", Qty: 1},
	)

	ids := func(fs []domain.Fill) []string {
		out := make([]string, 0, len(fs))
		for _, f := range fs {
			out = append(out, f.ID)
		}
		return out
	}

	tests := []struct {
		orderID, symbol string
		want            []string
	}{
		{"", "", []string{"f3", "f2", "f1"}},
		{"o1", "", []string{"f3", "f1"}},
		{"", "msft", []string{"f2"}},
		{"o1", "MSFT", []string{}},
	}
	for _, tt := range tests {
		if got := ids(env.terminal.Fills(tt.orderID, tt.symbol)); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Fills(%q, %q) = %v, want %v", tt.orderID, tt.symbol, got, tt.want)
		}
	}
}

func TestTerminal_PositionsAndRisk(t *testing.T) {
	env := newTestEnv()
	env.stores.Positions.Upsert(domain.Position{Symbol: "AAPL", AccountID: "default", Qty: 10, AvgPrice: 180})
	env.stores.Risk.Push(
		domain.RiskSnapshot{ID: "r1", Symbol: "AAPL", AccountID: "default", MarginUsed: 1},
		domain.RiskSnapshot{ID: "r2", Symbol: "AAPL", AccountID: "default", MarginUsed: 2},
	)

	p, err := env.terminal.Position("aapl", "")
	if err != nil {
		t.Fatalf("position: %v", err)
	}
	if p.Qty != 10 {
		t.Errorf("qty = %d, want 10", p.Qty)
	}
	if _, err := env.terminal.Position("MSFT", ""); !errors.Is(err, domain.ErrPositionNotFound) {
		t.Errorf("expected ErrPositionNotFound, got %v", err)
	}

	if n := len(env.terminal.Positions()); n != 1 {
		t.Errorf("positions = %d, want 1", n)
	}
	if n := len(env.terminal.RiskHistory("AAPL", "")); n != 2 {
		t.Errorf("risk history = %d, want 2", n)
	}

	latest, err := env.terminal.LatestRisk("AAPL", "default")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.ID != "r2" {
		t.Errorf("latest = %s, want r2", latest.ID)
	}
	if _, err := env.terminal.LatestRisk("MSFT", ""); !errors.Is(err, domain.ErrSnapshotNotFound) {
		t.Errorf("expected ErrSnapshotNotFound, got %v", err)
	}
}

func TestTerminal_Connection(t *testing.T) {
	env := newTestEnv()
	env.stores.Connection.SetConnected(true, t0)
	env.stores.Connection.SetLatency(12, t0)

	c := env.terminal.Connection()
	if !c.Connected || c.LatencyMs != 12 || c.Environment != "SIM" {
		t.Errorf("connection = %+v", c)
	}
}
