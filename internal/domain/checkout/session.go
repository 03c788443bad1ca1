package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/checkoutkit/internal/domain/analytics"
	"github.com/felixgeelhaar/checkoutkit/internal/domain/completion"
	"github.com/felixgeelhaar/checkoutkit/internal/domain/fragment"
	"github.com/felixgeelhaar/checkoutkit/internal/domain/session"
	"github.com/felixgeelhaar/checkoutkit/internal/domain/stepper"
	"github.com/felixgeelhaar/checkoutkit/internal/i18n"
	"github.com/felixgeelhaar/checkoutkit/internal/ports"
)

// Sentinel errors for session operations.
var (
	// ErrSessionClosed is returned when an operation reaches a stopped session.
	ErrSessionClosed = errors.New("checkout session is closed")
	// ErrFormBusy is returned when the form is not ready for interaction.
	ErrFormBusy = errors.New("checkout form is not ready for interaction")
	// ErrAlreadyStarted is returned when Start is called twice.
	ErrAlreadyStarted = errors.New("checkout session already started")
	// ErrNoNextStep is returned by Continue on the last numbered step.
	ErrNoNextStep = errors.New("no numbered step follows the active step")
	// ErrNotTerminalStep is returned by Submit before the last numbered step.
	ErrNotTerminalStep = errors.New("a numbered step still follows the active step")
	// ErrNotEditable is returned by Edit for steps without the edit affordance.
	ErrNotEditable = errors.New("step cannot be edited")
	// ErrUnknownStep is returned by Edit for step IDs outside the flow.
	ErrUnknownStep = errors.New("step is not part of this checkout")
)

// SubmitFunc processes the final order submission. A nil SubmitFunc
// submits successfully.
type SubmitFunc func(ctx context.Context) error

// Config assembles a checkout session.
type Config struct {
	// Steps is the ordered flow definition. Required, at least one
	// numbered step.
	Steps []stepper.Descriptor
	// Location is the URL fragment surface the session reads and writes.
	Location ports.Location
	// Logger receives structured progress output.
	Logger ports.Logger
	// Sink receives analytics events. Defaults to a null sink.
	Sink analytics.Sink
	// Localizer translates shopper-facing strings. Defaults to English.
	Localizer i18n.Localizer
	// Submit runs the order submission. Optional.
	Submit SubmitFunc
}

// Session orchestrates one checkout. It owns the annotated steps, the
// step store and its registry, the completion tracker and gate, the
// fragment synchronizer, and the form state machine, and exposes the
// operations the rendering layer calls.
//
// All exported methods are safe for concurrent use.
type Session struct {
	mu sync.Mutex

	id        string
	steps     []stepper.Annotated
	logger    ports.Logger
	sink      analytics.Sink
	location  ports.Location
	localizer i18n.Localizer
	submit    SubmitFunc

	registry *session.Registry
	store    *session.StepStore
	tracker  *completion.Tracker
	gate     *completion.Gate
	syncer   *fragment.Synchronizer
	form     *formMachine

	payment string
	fields  map[string]string

	updates     chan struct{}
	unsubscribe func()

	// runCtx spans the session lifetime so deferred completion checks
	// survive the keypress-scoped contexts of callers.
	runCtx    context.Context
	runCancel context.CancelFunc

	started bool
	closed  bool
}

// NewSession wires a session from its configuration. The flow is
// annotated once here; annotation errors surface before anything runs.
func NewSession(cfg Config) (*Session, error) {
	if cfg.Location == nil {
		return nil, fmt.Errorf("location is required")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	sink := cfg.Sink
	if sink == nil {
		sink = analytics.NewNullSink()
	}
	localizer := cfg.Localizer
	if localizer.IsZero() {
		localizer = i18n.Default()
	}

	steps, err := stepper.Annotate(cfg.Steps)
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	logger := cfg.Logger.With(ports.F("session", id))

	registry := session.NewRegistry()
	tracker := completion.NewTracker()
	gate := completion.NewGate(tracker, logger)

	store, err := session.NewStepStore(session.StepStoreConfig{
		Registry:  registry,
		SessionID: id,
		Sink:      sink,
		WriteURL: func(target int) {
			fragment.Write(cfg.Location, target)
		},
		Clamp: func(target int) int {
			return stepper.Clamp(steps, target)
		},
	})
	if err != nil {
		return nil, err
	}

	form, err := newFormMachine()
	if err != nil {
		return nil, err
	}

	runCtx, runCancel := context.WithCancel(context.Background())

	s := &Session{
		id:        id,
		steps:     steps,
		logger:    logger,
		sink:      sink,
		location:  cfg.Location,
		localizer: localizer,
		submit:    cfg.Submit,
		registry:  registry,
		store:     store,
		tracker:   tracker,
		gate:      gate,
		syncer:    fragment.NewSynchronizer(cfg.Location, store, logger),
		form:      form,
		fields:    make(map[string]string),
		updates:   make(chan struct{}, 1),
		runCtx:    runCtx,
		runCancel: runCancel,
	}
	s.unsubscribe = store.Subscribe(s.onStepChanged)

	return s, nil
}

// Start begins fragment synchronization: the active step is initialized
// from the current URL fragment and fragment navigation is watched until
// Stop.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.started = true
	steps := s.steps
	s.mu.Unlock()

	if err := s.syncer.Start(ctx, steps, s.tracker.IsComplete); err != nil {
		return err
	}

	s.logger.Info(ctx, "checkout session started",
		ports.F("steps", len(steps)),
		ports.F("active_step", s.store.StepNumber()))
	return nil
}

// MarkLoaded signals that outside data is ready. The form leaves the
// loading state and becomes interactive. Calling it in any other state
// is a no-op.
func (s *Session) MarkLoaded() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.form.status() == FormLoading {
		s.form.send(EventLoaded)
		s.notifyLocked()
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// FormStatus returns the current form lifecycle state.
func (s *Session) FormStatus() FormStatus {
	return s.form.status()
}

// FormMetrics returns the form machine's runtime counters.
func (s *Session) FormMetrics() FormContext {
	return s.form.metrics()
}

// StepNumber returns the active step number.
func (s *Session) StepNumber() int {
	return s.store.StepNumber()
}

// Steps returns a copy of the annotated flow.
func (s *Session) Steps() []stepper.Annotated {
	out := make([]stepper.Annotated, len(s.steps))
	copy(out, s.steps)
	return out
}

// Tracker exposes the completion tracker for collaborators such as
// completion-aware render layers.
func (s *Session) Tracker() *completion.Tracker {
	return s.tracker
}

// Registry exposes the store registry so hosts can look up the step
// store by its well-known key.
func (s *Session) Registry() *session.Registry {
	return s.registry
}

// ActiveStep resolves the annotated step for the current step number.
func (s *Session) ActiveStep() (stepper.Annotated, error) {
	return stepper.ActiveStep(s.steps, s.store.StepNumber())
}

// Updates returns a channel that receives a signal whenever the
// rendered state may have changed. The channel is never closed; it is
// coalescing, so a slow reader sees at least one signal.
func (s *Session) Updates() <-chan struct{} {
	return s.updates
}

// SetPaymentMethod records the selected payment method for completion
// checks.
func (s *Session) SetPaymentMethod(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.payment = id
	s.notifyLocked()
}

// PaymentMethod returns the selected payment method.
func (s *Session) PaymentMethod() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.payment
}

// SetField records a form field value for completion checks.
func (s *Session) SetField(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.fields[key] = value
	s.notifyLocked()
}

// Field returns a recorded form field value.
func (s *Session) Field(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fields[key]
}

// Continue runs the active step's completion check and, when it settles
// complete, advances to the next numbered step.
//
// A synchronous verdict advances (or stays) before Continue returns. A
// deferred verdict puts the form into validating and returns
// immediately; the step change happens when the settlement arrives.
func (s *Session) Continue(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.form.status() != FormReady {
		s.mu.Unlock()
		return ErrFormBusy
	}

	active, err := stepper.ActiveStep(s.steps, s.store.StepNumber())
	if err != nil {
		s.mu.Unlock()
		return err
	}
	next, ok := stepper.NextNumbered(s.steps, active)
	if !ok {
		s.mu.Unlock()
		return ErrNoNextStep
	}

	req := s.checkRequestLocked(active)
	outcome := s.gate.Evaluate(s.runCtx, active.IsComplete, req, func(complete bool) {
		s.settleContinue(active, next, complete)
	})

	if outcome.Deferred {
		// The settlement callback needs s.mu, so it cannot overtake this
		// transition even if the check settles instantly.
		s.form.send(EventValidate)
		s.notifyLocked()
		s.mu.Unlock()
		s.logger.Debug(ctx, "continue deferred", ports.F("step", active.ID.String()))
		return nil
	}

	s.mu.Unlock()

	if outcome.Complete {
		s.store.ChangeStep(next.Number)
		s.logger.Info(ctx, "advanced to next step",
			ports.F("from", active.Number),
			ports.F("to", next.Number))
	} else {
		s.logger.Info(ctx, "step incomplete", ports.F("step", active.ID.String()))
	}
	return nil
}

// settleContinue handles a deferred settlement: the form returns to
// ready, and on a complete settlement the flow advances. ChangeStep runs
// after the lock is released because subscribers re-enter the session.
func (s *Session) settleContinue(active, next stepper.Annotated, complete bool) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.form.status() == FormValidating {
		s.form.send(EventValidated)
	}
	s.notifyLocked()
	s.mu.Unlock()

	if complete {
		s.store.ChangeStep(next.Number)
		s.logger.Info(s.runCtx, "advanced after deferred check",
			ports.F("from", active.Number),
			ports.F("to", next.Number))
	} else {
		s.logger.Info(s.runCtx, "deferred check settled incomplete",
			ports.F("step", active.ID.String()))
	}
}

// Edit jumps back to a previously completed numbered step. The edit
// affordance requires a ready form, a numbered non-active step, and an
// IsEditable hook that is absent or true.
func (s *Session) Edit(id stepper.StepID) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.form.status() != FormReady {
		s.mu.Unlock()
		return ErrFormBusy
	}

	var step stepper.Annotated
	found := false
	for _, st := range s.steps {
		if st.ID.Equals(id) {
			step = st
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownStep, id.String())
	}

	active := s.store.StepNumber()
	if !step.Numbered || step.Number == active {
		s.mu.Unlock()
		return ErrNotEditable
	}
	if step.IsEditable != nil && !step.IsEditable() {
		s.mu.Unlock()
		return ErrNotEditable
	}
	s.mu.Unlock()

	s.store.ChangeStep(step.Number)
	s.logger.Info(s.runCtx, "editing step",
		ports.F("step", step.ID.String()),
		ports.F("number", step.Number))
	return nil
}

// Submit places the order. It is only available on the last numbered
// step with a ready form. A failing submission returns the form to
// ready so the shopper can retry.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.form.status() != FormReady {
		s.mu.Unlock()
		return ErrFormBusy
	}

	active, err := stepper.ActiveStep(s.steps, s.store.StepNumber())
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if _, ok := stepper.NextNumbered(s.steps, active); ok {
		s.mu.Unlock()
		return ErrNotTerminalStep
	}

	s.form.send(EventSubmit)
	s.notifyLocked()
	submit := s.submit
	s.mu.Unlock()

	var submitErr error
	if submit != nil {
		submitErr = submit(ctx)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if submitErr != nil {
		s.form.send(EventSubmitFailed)
		s.notifyLocked()
		s.mu.Unlock()
		s.logger.Error(ctx, "order submission failed", ports.F("error", submitErr))
		return fmt.Errorf("order submission failed: %w", submitErr)
	}
	s.form.send(EventSubmitted)
	s.notifyLocked()
	s.mu.Unlock()

	s.logger.Info(ctx, "order submitted", ports.F("step", active.ID.String()))
	return nil
}

// Reset starts a fresh form after a completed order. Completion flags
// are cleared and the flow returns to step one in the loading state;
// the host calls MarkLoaded when the new order's data is ready.
func (s *Session) Reset() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.form.status() != FormComplete {
		s.mu.Unlock()
		return ErrFormBusy
	}
	s.form.send(EventReset)
	s.notifyLocked()
	s.mu.Unlock()

	s.tracker.Reset()
	s.store.ChangeStep(1)
	s.logger.Info(s.runCtx, "checkout reset")
	return nil
}

// Stop tears the session down: the synchronizer stops watching, pending
// completion checks are invalidated, and the form machine halts. Stop
// is idempotent.
func (s *Session) Stop() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	// The synchronizer's dispatch path re-enters onStepChanged, so the
	// session lock must not be held here.
	s.runCancel()
	s.syncer.Stop()
	if unsubscribe != nil {
		unsubscribe()
	}
	s.gate.InvalidateAll()
	s.form.stop()

	s.logger.Info(context.Background(), "checkout session stopped")
}

// onStepChanged runs on every committed step change. Navigating away
// during a deferred check supersedes that check: pending settlements are
// invalidated and the form returns to ready.
func (s *Session) onStepChanged(state session.StepState) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.form.status() == FormValidating {
		s.gate.InvalidateAll()
		s.form.send(EventValidated)
		s.logger.Debug(s.runCtx, "navigation superseded pending check",
			ports.F("step_number", state.StepNumber))
	}
	s.notifyLocked()
	s.mu.Unlock()
}

// notifyLocked pushes a coalescing update signal. Callers hold s.mu.
func (s *Session) notifyLocked() {
	select {
	case s.updates <- struct{}{}:
	default:
	}
}

// checkRequestLocked builds the completion request for a step from the
// session's recorded inputs. Callers hold s.mu.
func (s *Session) checkRequestLocked(active stepper.Annotated) completion.Request {
	fields := make(map[string]string, len(s.fields))
	for k, v := range s.fields {
		fields[k] = v
	}
	return completion.Request{
		SessionID:       s.id,
		StepID:          active.ID.String(),
		PaymentMethodID: s.payment,
		Fields:          fields,
	}
}
