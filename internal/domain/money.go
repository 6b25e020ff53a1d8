package domain

import "github.com/shopspring/decimal"

// Prices carry four decimal places and monetary amounts two, matching what
// the blotters display.
const (
	PricePlaces int32 = 4
	MoneyPlaces int32 = 2
)

// RoundPrice rounds a price to PricePlaces decimal places (half away from zero).
func RoundPrice(f float64) float64 {
	return decimal.NewFromFloat(f).Round(PricePlaces).InexactFloat64()
}

// RoundMoney rounds a monetary amount to MoneyPlaces decimal places.
func RoundMoney(f float64) float64 {
	return decimal.NewFromFloat(f).Round(MoneyPlaces).InexactFloat64()
}

// Notional returns price × qty computed in decimal to avoid accumulating
// binary floating-point error across large quantities.
func Notional(price float64, qty int64) float64 {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(qty)).InexactFloat64()
}
