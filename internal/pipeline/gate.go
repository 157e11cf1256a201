package pipeline

import "sync"

// Gate is a single-slot admission controller: at most one detection may be
// in flight at a time. Frames arriving while the gate is busy or disabled
// are dropped, never buffered.
type Gate struct {
	mu      sync.Mutex
	enabled bool
	busy    bool
}

// NewGate creates a Gate with the given initial enabled state.
func NewGate(enabled bool) *Gate {
	return &Gate{enabled: enabled}
}

// TryEnter attempts to admit a frame. It returns false without any state
// change when the gate is disabled or a detection is already in flight;
// otherwise it marks the gate busy and returns true.
func (g *Gate) TryEnter() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.enabled || g.busy {
		return false
	}
	g.busy = true
	return true
}

// Exit releases the gate. Called on every completion path, success or failure.
func (g *Gate) Exit() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.busy = false
}

// SetEnabled toggles admission. Disabling does not cancel an in-flight
// detection; it only blocks the next frame's admission.
func (g *Gate) SetEnabled(enabled bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.enabled = enabled
}

// Enabled returns whether the gate admits frames.
func (g *Gate) Enabled() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.enabled
}

// Busy returns whether a detection is currently in flight.
func (g *Gate) Busy() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.busy
}
