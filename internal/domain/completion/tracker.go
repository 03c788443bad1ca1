package completion

import (
	"sync"
	"time"
)

// Tracker holds the completion status map of a checkout session: step ID to
// complete/incomplete. Absent entries count as incomplete. Entries are
// written only by the gate's settlement path; everyone else reads.
type Tracker struct {
	mu        sync.RWMutex
	status    map[string]bool
	updatedAt time.Time
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		status: make(map[string]bool),
	}
}

// Record stores the outcome of a completion check for a step.
func (t *Tracker) Record(stepID string, complete bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status[stepID] = complete
	t.updatedAt = time.Now()
}

// IsComplete reports whether a step has been confirmed complete.
// Steps without an entry are incomplete.
func (t *Tracker) IsComplete(stepID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status[stepID]
}

// Has reports whether the tracker holds any entry for the step.
func (t *Tracker) Has(stepID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.status[stepID]
	return ok
}

// CompletedCount returns the number of steps confirmed complete.
func (t *Tracker) CompletedCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	count := 0
	for _, complete := range t.status {
		if complete {
			count++
		}
	}
	return count
}

// Snapshot returns a copy of the status map.
func (t *Tracker) Snapshot() map[string]bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	snapshot := make(map[string]bool, len(t.status))
	for id, complete := range t.status {
		snapshot[id] = complete
	}
	return snapshot
}

// UpdatedAt returns the time of the last recorded outcome.
func (t *Tracker) UpdatedAt() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.updatedAt
}

// Reset clears all recorded outcomes.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = make(map[string]bool)
	t.updatedAt = time.Now()
}
