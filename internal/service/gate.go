package service

import (
	"regexp"

	"github.com/efreitasn/terminalsim/internal/domain"
)

// Gate serializes service reads and edits with scheduler cycles.
// *engine.Scheduler implements it.
type Gate interface {
	Read(fn func())
	Write(fn func())
}

var symbolRegex = regexp.MustCompile(`^[A-Z][A-Z0-9.]{0,9}$`)

// validSymbol normalizes symbol and checks its format.
func validSymbol(symbol string) (string, error) {
	s := domain.NormalizeSymbol(symbol)
	if !symbolRegex.MatchString(s) {
		return "", &domain.ValidationError{
			Message: "symbol must match ^[A-Z][A-Z0-9.]{0,9}$",
		}
	}
	return s, nil
}
