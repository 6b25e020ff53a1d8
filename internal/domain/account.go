package domain

import "time"

// Account is a trading account that positions and margin are booked against.
type Account struct {
	AccountID string
	Equity    float64
	CreatedAt time.Time
}

// MarginAvailable returns equity minus margin used, floored at zero.
func (a *Account) MarginAvailable(marginUsed float64) float64 {
	return MarginAvailable(a.Equity, marginUsed)
}

// MarginAvailable returns max(0, equity - marginUsed) rounded to cents.
func MarginAvailable(equity, marginUsed float64) float64 {
	v := equity - marginUsed
	if v < 0 {
		return 0
	}
	return RoundMoney(v)
}
