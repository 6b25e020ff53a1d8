package domain

import "time"

// Tick is the latest top-of-book quote for a symbol. Ticks are replaced
// wholesale on every market cycle and never partially mutated.
type Tick struct {
	Symbol    string
	Bid       float64
	Ask       float64
	Last      float64
	Change    float64
	ChangePct float64
	Volume    int64
	Timestamp time.Time
}

// Mid returns the midpoint between bid and ask.
func (t Tick) Mid() float64 {
	return (t.Bid + t.Ask) / 2
}

// Spread returns ask minus bid.
func (t Tick) Spread() float64 {
	return t.Ask - t.Bid
}
