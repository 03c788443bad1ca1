// Package session provides the session-scoped reducer store that holds
// checkout state, plus the registry the stores are looked up from.
package session

import "sync"

// Action is a dispatched mutation request.
type Action struct {
	Type    string
	Payload interface{}
}

// Reducer computes the next state from the current state and an action.
type Reducer[S any] func(state S, action Action) S

// Effect is a pre-commit side effect. Effects run in registration order
// before the reducer commits the action, and receive the state as it was
// when the action was dispatched. Effects must not call back into the store.
type Effect[S any] func(state S, action Action)

type subscriber[S any] struct {
	id uint64
	fn func(S)
}

// Store is a synchronous reducer-style store: dispatching an action runs
// the pre-commit effects in order, commits the reduced state atomically,
// and then notifies subscribers. Readers observe the committed state
// synchronously once Dispatch returns.
type Store[S any] struct {
	mu      sync.Mutex
	state   S
	reducer Reducer[S]
	effects []Effect[S]
	subs    []subscriber[S]
	nextSub uint64
}

// NewStore creates a store with the given initial state and reducer.
func NewStore[S any](initial S, reducer Reducer[S]) *Store[S] {
	return &Store[S]{
		state:   initial,
		reducer: reducer,
	}
}

// Use registers a pre-commit effect. Effects run in registration order on
// every dispatched action.
func (s *Store[S]) Use(effect Effect[S]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.effects = append(s.effects, effect)
}

// Dispatch runs the effect pipeline, commits the reduced state, and
// notifies subscribers with the committed state.
func (s *Store[S]) Dispatch(action Action) {
	s.mu.Lock()
	for _, effect := range s.effects {
		effect(s.state, action)
	}
	s.state = s.reducer(s.state, action)
	committed := s.state
	subs := make([]subscriber[S], len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(committed)
	}
}

// State returns the current committed state.
func (s *Store[S]) State() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn to be called with the committed state after every
// dispatch, in subscription order. The returned function unsubscribes.
func (s *Store[S]) Subscribe(fn func(S)) func() {
	s.mu.Lock()
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscriber[S]{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}
