package shared

import (
	"time"
)

const (
	// SignalExpiry is the maximum age of an active signal before it expires.
	SignalExpiry = time.Hour * 4
)

// Direction represents the direction of a signal.
type Direction int

const (
	Buy Direction = iota
	Sell
)

// String stringifies the provided direction.
func (d *Direction) String() string {
	switch *d {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "unknown"
	}
}

// SignalStatus represents the lifecycle status of a signal.
type SignalStatus int

const (
	SignalActive SignalStatus = iota
	SignalHitTakeProfit
	SignalHitStopLoss
	SignalExpired
	SignalCancelled
)

// String stringifies the provided signal status.
func (s *SignalStatus) String() string {
	switch *s {
	case SignalActive:
		return "ACTIVE"
	case SignalHitTakeProfit:
		return "HIT_TP"
	case SignalHitStopLoss:
		return "HIT_SL"
	case SignalExpired:
		return "EXPIRED"
	case SignalCancelled:
		return "CANCELLED"
	default:
		return "unknown"
	}
}

// Terminal reports whether the provided status ends a signal's lifecycle.
func (s *SignalStatus) Terminal() bool {
	return *s != SignalActive
}

// Signal represents a directional trading signal generated from indicator
// evidence. A signal is created once and mutated only by its tracker.
type Signal struct {
	ID         string
	Pair       string
	Direction  Direction
	EntryPrice float64
	StopLoss   float64
	TakeProfit float64
	Confidence float64
	Analysis   string
	Timeframe  Timeframe
	CreatedOn  time.Time
	RiskReward float64
	Status     SignalStatus
	ExitPrice  float64
	PNLPercent float64
	ClosedOn   time.Time
}

// UpdatePNLPercent updates the percentage change of the signal given the
// current price.
func (s *Signal) UpdatePNLPercent(currentPrice float64) float64 {
	switch s.Direction {
	case Sell:
		s.PNLPercent = ((s.EntryPrice - currentPrice) / s.EntryPrice) * 100
	default:
		s.PNLPercent = ((currentPrice - s.EntryPrice) / s.EntryPrice) * 100
	}

	return s.PNLPercent
}

// SignalOutcome represents the recorded outcome of a closed signal.
type SignalOutcome struct {
	SignalID   string
	Pair       string
	Status     SignalStatus
	PNLPercent float64
	Duration   time.Duration
}

// PriceQuote represents the current quote for a pair.
type PriceQuote struct {
	Pair          string
	Price         float64
	Change        float64
	ChangePercent float64
	Volume        float64
	Timestamp     time.Time
}
