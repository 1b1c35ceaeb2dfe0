package transfer

import "sync"

// Tracker serializes reducer applications coming from concurrent workers.
// Every Apply reads the latest state, reduces it and publishes the result to
// the listener before the next Apply can run, so listeners observe states in
// the order they were produced. Listeners must not call Apply.
type Tracker[S, E any] struct {
	mu       sync.Mutex
	state    S
	reduce   func(S, E) S
	listener func(S)
}

func NewTracker[S, E any](initial S, reduce func(S, E) S, listener func(S)) *Tracker[S, E] {
	return &Tracker[S, E]{state: initial, reduce: reduce, listener: listener}
}

// Apply reduces ev into the current state and returns the new state.
func (t *Tracker[S, E]) Apply(ev E) S {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state = t.reduce(t.state, ev)
	if t.listener != nil {
		t.listener(t.state)
	}
	return t.state
}

// State returns the current state.
func (t *Tracker[S, E]) State() S {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}
