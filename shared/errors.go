package shared

import (
	"errors"
)

var (
	// ErrInsufficientData indicates fewer bars were available than an
	// operation requires.
	ErrInsufficientData = errors.New("insufficient historical data")
	// ErrProviderUnavailable indicates no provider could supply market data
	// for a pair.
	ErrProviderUnavailable = errors.New("price provider unavailable")
	// ErrUnknownStrategy indicates an unknown strategy id was requested.
	ErrUnknownStrategy = errors.New("unknown strategy")
)
