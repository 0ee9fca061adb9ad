package sync

import "time"

// DefaultGateInterval is the minimum spacing between two sync passes.
// Table-change events can fire faster than meaningful recomputation is
// needed.
const DefaultGateInterval = 50 * time.Millisecond

// Gate coalesces bursts of trigger events into at most one sync pass per
// interval. It is a plain timestamp check, not a queue: an event arriving
// while the gate is closed is dropped, never replayed.
type Gate struct {
	interval time.Duration
	last     time.Time
}

// NewGate returns a gate with the given minimum interval between runs.
func NewGate(interval time.Duration) *Gate {
	return &Gate{interval: interval}
}

// ShouldRun reports whether a pass may run at the given instant, and if so
// closes the gate until interval has elapsed. Timestamps are injected so the
// gate is testable without sleeping.
func (g *Gate) ShouldRun(now time.Time) bool {
	if !g.last.IsZero() && now.Sub(g.last) < g.interval {
		return false
	}
	g.last = now
	return true
}
