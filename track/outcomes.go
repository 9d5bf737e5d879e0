package track

import "github.com/halver/copysig/shared"

const (
	// outcomeHistorySize is the maximum number of entries for an outcome history.
	outcomeHistorySize = 256
)

// OutcomeHistory represents a bounded history of resolved signal outcomes.
type OutcomeHistory struct {
	data  []*shared.SignalOutcome
	start int
	count int
	size  int
}

// NewOutcomeHistory initializes a new outcome history.
func NewOutcomeHistory() *OutcomeHistory {
	return &OutcomeHistory{
		data: make([]*shared.SignalOutcome, outcomeHistorySize),
		size: outcomeHistorySize,
	}
}

// Add appends the provided outcome to the history.
func (h *OutcomeHistory) Add(outcome *shared.SignalOutcome) {
	end := (h.start + h.count) % h.size
	h.data[end] = outcome

	if h.count == h.size {
		// Overwrite the oldest entry when the history is at capacity.
		h.start = (h.start + 1) % h.size
	} else {
		h.count++
	}
}

// Count returns the number of outcomes held by the history.
func (h *OutcomeHistory) Count() int {
	return h.count
}

// LastN fetches the last n number of outcomes from the history.
func (h *OutcomeHistory) LastN(n int) []*shared.SignalOutcome {
	if n <= 0 {
		return nil
	}

	// Clamp the number of elements expected if it is greater than the history count.
	if n > h.count {
		n = h.count
	}

	set := make([]*shared.SignalOutcome, n)
	start := (h.start + h.count - n + h.size) % h.size

	for i := range n {
		idx := (start + i) % h.size
		set[i] = h.data[idx]
	}

	return set
}

// PNLPercents collects the percentage returns of all held outcomes, oldest
// first.
func (h *OutcomeHistory) PNLPercents() []float64 {
	outcomes := h.LastN(h.count)

	pnls := make([]float64, len(outcomes))
	for idx := range outcomes {
		pnls[idx] = outcomes[idx].PNLPercent
	}

	return pnls
}
