package chat

import "sync"

// PendingState enum for an optimistic message insert
type PendingState string

const (
	StatePending    PendingState = "pending"
	StateCommitted  PendingState = "committed"
	StateRolledBack PendingState = "rolled-back"
)

// PendingTracker tracks optimistic message inserts for one conversation.
// A message enters as pending; a successful send commits it, any failure
// rolls it back so it is removed from the visible transcript. Transitions
// are only valid out of the pending state.
type PendingTracker struct {
	mu     sync.Mutex
	states map[MessageID]PendingState
}

func NewPendingTracker() *PendingTracker {
	return &PendingTracker{states: make(map[MessageID]PendingState)}
}

// Add registers a new pending message
func (t *PendingTracker) Add(id MessageID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.states[id] = StatePending
}

// Commit transitions pending -> committed. Returns false if the message
// is unknown or no longer pending.
func (t *PendingTracker) Commit(id MessageID) bool {
	return t.transition(id, StateCommitted)
}

// Rollback transitions pending -> rolled-back. Returns false if the
// message is unknown or no longer pending.
func (t *PendingTracker) Rollback(id MessageID) bool {
	return t.transition(id, StateRolledBack)
}

func (t *PendingTracker) transition(id MessageID, to PendingState) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.states[id] != StatePending {
		return false
	}
	t.states[id] = to
	return true
}

// State reports the current state of a tracked message
func (t *PendingTracker) State(id MessageID) (PendingState, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.states[id]
	return s, ok
}
