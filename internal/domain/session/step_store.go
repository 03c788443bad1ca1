package session

import (
	"fmt"

	"github.com/felixgeelhaar/checkoutkit/internal/domain/analytics"
)

// StepStoreKey is the registry key the step store is registered under.
// The key is claimed exactly once per session.
const StepStoreKey = "checkout-steps"

// ActionChangeStep drives the change-step pipeline.
const ActionChangeStep = "CHANGE_STEP"

// StepState holds the currently active step number. The default is step 1.
type StepState struct {
	StepNumber int
}

// StepStoreConfig wires the change-step side channels.
type StepStoreConfig struct {
	// Registry the store registers itself in.
	Registry *Registry

	// SessionID tags emitted analytics events.
	SessionID string

	// Sink receives the step-number-change notification before the URL
	// write and the commit.
	Sink analytics.Sink

	// WriteURL persists the target number to the URL side channel after
	// the notification and before the commit.
	WriteURL func(target int)

	// Clamp brings a target into the valid numbered range.
	Clamp func(target int) int
}

// StepStore holds the active step number and exposes the change-step
// action. Each ChangeStep call performs, in order: exactly one analytics
// notification carrying the target, exactly one URL write, then the atomic
// state commit. Subscribers observe the committed state synchronously.
type StepStore struct {
	store *Store[StepState]
	clamp func(int) int
}

// NewStepStore builds the step store and registers it under StepStoreKey.
func NewStepStore(cfg StepStoreConfig) (*StepStore, error) {
	if cfg.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if cfg.Sink == nil {
		return nil, fmt.Errorf("analytics sink is required")
	}
	if cfg.WriteURL == nil {
		return nil, fmt.Errorf("URL writer is required")
	}
	if cfg.Clamp == nil {
		return nil, fmt.Errorf("clamp is required")
	}

	store := NewStore(StepState{StepNumber: 1}, reduceSteps)

	store.Use(func(_ StepState, action Action) {
		target, ok := changeStepTarget(action)
		if !ok {
			return
		}
		event := analytics.NewEvent(analytics.EventStepNumberChange, target).WithSession(cfg.SessionID)
		_ = cfg.Sink.Record(event)
	})
	store.Use(func(_ StepState, action Action) {
		target, ok := changeStepTarget(action)
		if !ok {
			return
		}
		cfg.WriteURL(target)
	})

	if err := cfg.Registry.Register(StepStoreKey, store); err != nil {
		return nil, err
	}

	return &StepStore{store: store, clamp: cfg.Clamp}, nil
}

// ChangeStep clamps the target into range and dispatches the change-step
// action through the notify, URL write, commit pipeline.
func (s *StepStore) ChangeStep(target int) {
	s.store.Dispatch(Action{Type: ActionChangeStep, Payload: s.clamp(target)})
}

// StepNumber returns the committed active step number.
func (s *StepStore) StepNumber() int {
	return s.store.State().StepNumber
}

// Subscribe registers fn for committed state changes. The returned
// function unsubscribes.
func (s *StepStore) Subscribe(fn func(StepState)) func() {
	return s.store.Subscribe(fn)
}

// reduceSteps commits change-step actions and ignores everything else.
func reduceSteps(state StepState, action Action) StepState {
	if target, ok := changeStepTarget(action); ok {
		return StepState{StepNumber: target}
	}
	return state
}

// changeStepTarget extracts the target number from a change-step action.
func changeStepTarget(action Action) (int, bool) {
	if action.Type != ActionChangeStep {
		return 0, false
	}
	target, ok := action.Payload.(int)
	return target, ok
}
