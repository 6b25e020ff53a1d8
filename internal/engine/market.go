package engine

import (
	"math"
	"time"

	"github.com/efreitasn/terminalsim/internal/domain"
)

// MarketParams shapes the synthetic random walk.
type MarketParams struct {
	PriceStep  float64 // maximum absolute move of last per tick
	SpreadBps  float64 // spread as basis points of last
	MinTick    float64 // spread floor
	PriceFloor float64 // last never drops below this
	MaxVolume  int64   // volume is drawn from [0, MaxVolume)
}

// DefaultMarketParams returns the demo walk parameters.
func DefaultMarketParams() MarketParams {
	return MarketParams{
		PriceStep:  0.25,
		SpreadBps:  1,
		MinTick:    0.01,
		PriceFloor: 0.1,
		MaxVolume:  1_000_000,
	}
}

// GenerateTick produces the next quote for symbol. prev is the previous last
// price and anchor the session-open reference that change and changePct are
// measured against, so change is cumulative for the session rather than
// tick-to-tick. It draws exactly two values from rng: the price move and the
// volume.
func GenerateTick(symbol string, prev, anchor float64, p MarketParams, rng Rand, now time.Time) domain.Tick {
	delta := (rng.Float64()*2 - 1) * p.PriceStep
	last := domain.RoundPrice(math.Max(p.PriceFloor, prev+delta))
	if last <= 0 {
		last = domain.RoundPrice(math.Max(p.PriceFloor, 0.0001))
	}

	spread := math.Max(p.MinTick, last*p.SpreadBps/10_000)
	bid := domain.RoundPrice(last - spread/2)
	ask := domain.RoundPrice(last + spread/2)

	change := domain.RoundPrice(last - anchor)
	changePct := 0.0
	if anchor != 0 {
		changePct = domain.RoundMoney(change / anchor * 100)
	}

	return domain.Tick{
		Symbol:    symbol,
		Bid:       bid,
		Ask:       ask,
		Last:      last,
		Change:    change,
		ChangePct: changePct,
		Volume:    int64(rng.Float64() * float64(p.MaxVolume)),
		Timestamp: now,
	}
}

// TickSource generates ticks for symbols, anchoring every symbol on its
// session-open base price.
type TickSource struct {
	symbols *domain.SymbolRegistry
	params  MarketParams
	rng     Rand
}

// NewTickSource creates a TickSource.
func NewTickSource(symbols *domain.SymbolRegistry, params MarketParams, rng Rand) *TickSource {
	return &TickSource{symbols: symbols, params: params, rng: rng}
}

// Next generates the next tick for symbol. A non-positive prev means no
// previous quote, in which case the walk starts from the base price.
func (s *TickSource) Next(symbol string, prev float64, now time.Time) domain.Tick {
	base := s.symbols.BasePrice(symbol)
	if prev <= 0 {
		prev = base
	}
	return GenerateTick(symbol, prev, base, s.params, s.rng, now)
}

// Seed generates an opening tick per symbol from its base price.
func (s *TickSource) Seed(symbols []string, now time.Time) []domain.Tick {
	ticks := make([]domain.Tick, 0, len(symbols))
	for _, sym := range symbols {
		ticks = append(ticks, s.Next(sym, 0, now))
	}
	return ticks
}
