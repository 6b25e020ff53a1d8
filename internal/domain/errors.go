package domain

import "errors"

// Sentinel errors for domain-level error handling.
// The handler layer maps these to HTTP status codes.
var (
	ErrOrderNotFound       = errors.New("order_not_found")
	ErrOrderAlreadyExists  = errors.New("order_already_exists")
	ErrOrderNotEditable    = errors.New("order_not_editable")
	ErrOrderNotCancellable = errors.New("order_not_cancellable")
	ErrIllegalTransition   = errors.New("illegal_status_transition")
	ErrTickNotFound        = errors.New("tick_not_found")
	ErrPositionNotFound    = errors.New("position_not_found")
	ErrSymbolNotWatched    = errors.New("symbol_not_watched")
	ErrAccountNotFound     = errors.New("account_not_found")
	ErrAccountExists       = errors.New("account_already_exists")
	ErrSnapshotNotFound    = errors.New("risk_snapshot_not_found")
)

// ValidationError represents a request validation failure.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
