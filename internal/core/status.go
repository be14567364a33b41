package core

import "sync"

// Status is a point-in-time copy of loop telemetry for readers on other goroutines.
type Status struct {
	Frame       uint64
	Ticks       uint64
	Substeps    int
	State       SimState
	Accumulator float64
	FPS         float64
	FPSAvg      float64
	Dt          float64
	Timings     []Timing
}

// StatusBoard hands the latest Status from the loop to editor consoles.
type StatusBoard struct {
	mu     sync.RWMutex
	status Status
}

// NewStatusBoard creates an empty board.
func NewStatusBoard() *StatusBoard {
	return &StatusBoard{}
}

// Publish replaces the current status. Called by the loop once per frame;
// the board keeps s as-is, so the caller must not reuse s.Timings.
func (b *StatusBoard) Publish(s Status) {
	b.mu.Lock()
	b.status = s
	b.mu.Unlock()
}

// Snapshot returns the latest published status.
func (b *StatusBoard) Snapshot() Status {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s := b.status
	s.Timings = append([]Timing(nil), b.status.Timings...)
	return s
}
