package live

import (
	"sync"

	"trade-brain/src/helpers"
	"trade-brain/src/utils"
)

// -----------------------------------------------------------------------------
// WindowTracker maintains the rolling window of most-recent prices that
// feeds live predictions. One tracker is shared by all connections, so all
// access goes through a single mutex.
// -----------------------------------------------------------------------------

// WindowState is the fill state of the tracker.
type WindowState int

const (
	StateEmpty WindowState = iota
	StateFilling
	StateReady // window full, stays ready while sliding
)

// -----------------------------------------------------------------------------

type WindowTracker struct {
	mu   sync.Mutex
	ring *utils.PriceRing
}

// -----------------------------------------------------------------------------

// NewWindowTracker creates a tracker with fixed capacity W.
func NewWindowTracker(capacity int) *WindowTracker {
	return &WindowTracker{
		ring: utils.NewPriceRing(capacity),
	}
}

// -----------------------------------------------------------------------------

// Push appends a price, evicting the oldest once at capacity. Returns the
// fill count and whether the window is ready.
func (t *WindowTracker) Push(price float64) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.ring.Append(price)
	return t.ring.Size(), t.ring.IsFull()
}

// -----------------------------------------------------------------------------

// PushAndSnapshot appends a price and, if the window is ready, returns a
// stable copy of it in push order. Push and snapshot happen under one lock
// so concurrent PREDICT calls each see a consistent window.
func (t *WindowTracker) PushAndSnapshot(price float64) ([]float64, int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.ring.Append(price)
	size := t.ring.Size()
	if !t.ring.IsFull() {
		return nil, size, helpers.NewInsufficientDataError(size, t.ring.Capacity())
	}
	return t.ring.GetAll(), size, nil
}

// -----------------------------------------------------------------------------

// Snapshot returns a stable copy of the full window, or an
// InsufficientDataError while still filling.
func (t *WindowTracker) Snapshot() ([]float64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.ring.IsFull() {
		return nil, helpers.NewInsufficientDataError(t.ring.Size(), t.ring.Capacity())
	}
	return t.ring.GetAll(), nil
}

// -----------------------------------------------------------------------------

// State reports EMPTY, FILLING or READY.
func (t *WindowTracker) State() WindowState {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch {
	case t.ring.Size() == 0:
		return StateEmpty
	case t.ring.IsFull():
		return StateReady
	default:
		return StateFilling
	}
}

// -----------------------------------------------------------------------------

// Size returns the current fill count.
func (t *WindowTracker) Size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ring.Size()
}

// -----------------------------------------------------------------------------

// Capacity returns W.
func (t *WindowTracker) Capacity() int {
	return t.ring.Capacity()
}
