package realtime

import (
	"sync"

	"trolley/internal/models"
)

// Tracker merges updates arriving over both delivery paths (realtime events
// and polled re-fetches) without double-processing. An update is applied only
// if its status is not chronologically behind the last one seen for that
// order, so an out-of-order poll result can never regress a further-along
// order.
type Tracker struct {
	mu     sync.Mutex
	latest map[string]models.OrderStatus
}

func NewTracker() *Tracker {
	return &Tracker{latest: make(map[string]models.OrderStatus)}
}

// Apply reports whether an update carrying the given status should be applied
// for the order, and records it if so. Duplicates (same status) and stale
// updates return false.
func (t *Tracker) Apply(orderID string, status models.OrderStatus) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	known, seen := t.latest[orderID]
	if !seen {
		t.latest[orderID] = status
		return true
	}
	if known.IsTerminal() {
		return false
	}
	if status == models.StatusCancelled || status.Rank() > known.Rank() {
		t.latest[orderID] = status
		return true
	}
	return false
}

// Status returns the last applied status for an order, if any.
func (t *Tracker) Status(orderID string) (models.OrderStatus, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.latest[orderID]
	return s, ok
}
