package shared

import (
	"time"
)

const (
	// TimeoutDuration is the maximum time to wait on a provider call before
	// timing out.
	TimeoutDuration = time.Second * 4
)

// ActiveSignalsRequest represents a request to fetch the currently tracked
// active signals.
type ActiveSignalsRequest struct {
	Pair     string
	Response chan []Signal
}

// NewActiveSignalsRequest initializes a new active signals request. An empty
// pair requests signals for all pairs.
func NewActiveSignalsRequest(pair string) ActiveSignalsRequest {
	return ActiveSignalsRequest{
		Pair:     pair,
		Response: make(chan []Signal, 1),
	}
}
