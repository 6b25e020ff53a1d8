package domain

import (
	"math"
	"testing"

	"pgregory.net/rapid"
)

func TestProperty_RoundPriceIsIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		f := rapid.Float64Range(-1e6, 1e6).Draw(t, "f")

		once := RoundPrice(f)
		if twice := RoundPrice(once); twice != once {
			t.Fatalf("RoundPrice not idempotent: %v → %v → %v", f, once, twice)
		}
		if math.Abs(once-f) > 0.00005+1e-9 {
			t.Fatalf("RoundPrice(%v) = %v moved more than half a unit", f, once)
		}
	})
}

func TestProperty_FeeIsNonNegativeAndLinearInRate(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		price := rapid.Float64Range(0.01, 5000).Draw(t, "price")
		qty := rapid.Int64Range(1, 100_000).Draw(t, "qty")

		fee := Fee(price, qty, 0.0002)
		if fee < 0 {
			t.Fatalf("Fee(%v, %d) = %v, want >= 0", price, qty, fee)
		}
		if Fee(price, qty, 0) != 0 {
			t.Fatalf("Fee with zero rate must be zero")
		}
	})
}
