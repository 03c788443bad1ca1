package fragment

import (
	"context"
	"errors"
	"sync"

	"github.com/felixgeelhaar/checkoutkit/internal/domain/session"
	"github.com/felixgeelhaar/checkoutkit/internal/domain/stepper"
	"github.com/felixgeelhaar/checkoutkit/internal/ports"
)

// ErrAlreadyStarted is returned when Start is called on a running
// synchronizer.
var ErrAlreadyStarted = errors.New("synchronizer already started")

// Synchronizer restores the active step from the location fragment once on
// Start and dispatches a change-step for every fragment navigation until
// Stop. A subscribed guard makes dispatch after Stop impossible, even for a
// notification racing the teardown.
type Synchronizer struct {
	mu         sync.Mutex
	loc        ports.Location
	store      *session.StepStore
	logger     ports.Logger
	subscribed bool
	cancel     context.CancelFunc
	done       chan struct{}
}

// NewSynchronizer creates a synchronizer between loc and store.
func NewSynchronizer(loc ports.Location, store *session.StepStore, logger ports.Logger) *Synchronizer {
	return &Synchronizer{
		loc:    loc,
		store:  store,
		logger: logger,
	}
}

// Start runs the initial synchronization exactly once, then follows
// fragment navigations until Stop or ctx cancellation.
//
// Initial synchronization reads the step number from the fragment and
// brings the store to it, unless a numbered step before it has not been
// confirmed complete by isComplete, in which case the store is forced back
// to step 1. Ongoing navigations are trusted and dispatched without a
// completion re-check.
func (s *Synchronizer) Start(ctx context.Context, steps []stepper.Annotated, isComplete func(stepID string) bool) error {
	s.mu.Lock()
	if s.subscribed {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.subscribed = true

	watchCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	changes := s.loc.Watch(watchCtx)
	s.mu.Unlock()

	s.initialSync(ctx, steps, isComplete)

	go s.watch(changes)
	return nil
}

// Stop unsubscribes from fragment navigations. It blocks until an in-flight
// dispatch has finished; afterwards no dispatch can occur.
func (s *Synchronizer) Stop() {
	s.mu.Lock()
	if !s.subscribed {
		s.mu.Unlock()
		return
	}
	s.subscribed = false
	cancel := s.cancel
	done := s.done
	s.cancel = nil
	s.mu.Unlock()

	cancel()
	<-done
}

// Subscribed reports whether the synchronizer is following navigations.
func (s *Synchronizer) Subscribed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subscribed
}

// initialSync restores the step number from the fragment, forcing step 1
// when a required predecessor is not complete. It holds the synchronizer's
// lock so it cannot interleave with Stop.
func (s *Synchronizer) initialSync(ctx context.Context, steps []stepper.Annotated, isComplete func(stepID string) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.subscribed {
		return
	}

	target := ParseStepNumber(s.loc.Fragment())
	if target != 1 && !stepper.AllPreviousComplete(steps, target, isComplete) {
		s.logger.Info(ctx, "previous steps incomplete, forcing step 1",
			ports.F("requested", target),
		)
		target = 1
	}
	s.store.ChangeStep(target)
}

// watch drains fragment navigations until the watch channel closes.
func (s *Synchronizer) watch(changes <-chan string) {
	defer close(s.done)
	for fragment := range changes {
		s.dispatch(fragment)
	}
}

// dispatch applies one fragment navigation. The subscribed guard is checked
// and the store updated under the synchronizer's lock, so a dispatch can
// never interleave with Stop.
func (s *Synchronizer) dispatch(fragment string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.subscribed {
		return
	}

	target := ParseStepNumber(fragment)
	s.logger.Debug(context.Background(), "fragment navigation",
		ports.F("fragment", fragment),
		ports.F("step", target),
	)
	s.store.ChangeStep(target)
}
