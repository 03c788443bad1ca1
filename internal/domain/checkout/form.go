// Package checkout provides the orchestrator that composes step
// annotation, the step store, completion tracking, the completion gate,
// and URL synchronization into one checkout session.
package checkout

import (
	"fmt"
	"sync"
	"time"

	"github.com/felixgeelhaar/statekit"
)

// FormStatus represents the checkout form's lifecycle state.
type FormStatus string

const (
	// FormLoading gates all rendering to a placeholder while outside data
	// is unready.
	FormLoading FormStatus = "loading"
	// FormReady accepts shopper interaction.
	FormReady FormStatus = "ready"
	// FormValidating holds the form while a deferred completion check is
	// in flight; actions are disabled to prevent a second concurrent check.
	FormValidating FormStatus = "validating"
	// FormSubmitting holds the form while the order submission runs.
	FormSubmitting FormStatus = "submitting"
	// FormComplete marks a submitted order.
	FormComplete FormStatus = "complete"
)

// IsInteractive reports whether the shopper may trigger actions.
func (s FormStatus) IsInteractive() bool {
	return s == FormReady
}

// Event types for the form state machine.
const (
	EventLoaded       = "LOADED"
	EventValidate     = "VALIDATE"
	EventValidated    = "VALIDATED"
	EventSubmit       = "SUBMIT"
	EventSubmitted    = "SUBMITTED"
	EventSubmitFailed = "SUBMIT_FAILED"
	EventReset        = "RESET"
)

// FormContext holds the runtime counters of the form state machine.
// This is used by statekit as the context type.
type FormContext struct {
	LoadedAt    time.Time
	Validations int
	Submissions int
}

// formRuntime wraps FormContext with thread-safe access.
type formRuntime struct {
	mu  sync.RWMutex
	ctx FormContext
}

// recordLoaded records when outside data first became ready.
func (r *formRuntime) recordLoaded() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ctx.LoadedAt.IsZero() {
		r.ctx.LoadedAt = time.Now()
	}
}

// recordValidation counts an entered validating phase.
func (r *formRuntime) recordValidation() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ctx.Validations++
}

// recordSubmission counts an entered submitting phase.
func (r *formRuntime) recordSubmission() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ctx.Submissions++
}

// snapshot returns a copy of the current context.
func (r *formRuntime) snapshot() FormContext {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ctx
}

// formMachine drives the form status through statekit. Transitions are
// issued only by the gate's settlement path and the submit path.
type formMachine struct {
	interp  *statekit.Interpreter[FormContext]
	runtime *formRuntime
}

// newFormMachine builds and starts the form state machine in "loading".
// The runtime pointer is captured by closures so actions modify the
// original context.
func newFormMachine() (*formMachine, error) {
	runtime := &formRuntime{}

	machine, err := statekit.NewMachine[FormContext]("checkout-form").
		WithInitial(statekit.StateID(FormLoading)).
		WithContext(runtime.snapshot()).
		WithAction("recordLoaded", func(_ *FormContext, _ statekit.Event) {
			runtime.recordLoaded()
		}).
		WithAction("recordValidation", func(_ *FormContext, _ statekit.Event) {
			runtime.recordValidation()
		}).
		WithAction("recordSubmission", func(_ *FormContext, _ statekit.Event) {
			runtime.recordSubmission()
		}).
		// Loading: outside data not ready yet
		State(statekit.StateID(FormLoading)).
		On(EventLoaded).Target(statekit.StateID(FormReady)).Done().
		// Ready: interactive
		State(statekit.StateID(FormReady)).
		OnEntry("recordLoaded").
		On(EventValidate).Target(statekit.StateID(FormValidating)).
		On(EventSubmit).Target(statekit.StateID(FormSubmitting)).Done().
		// Validating: a deferred completion check is in flight
		State(statekit.StateID(FormValidating)).
		OnEntry("recordValidation").
		On(EventValidated).Target(statekit.StateID(FormReady)).Done().
		// Submitting: the order submission is running
		State(statekit.StateID(FormSubmitting)).
		OnEntry("recordSubmission").
		On(EventSubmitted).Target(statekit.StateID(FormComplete)).
		On(EventSubmitFailed).Target(statekit.StateID(FormReady)).Done().
		// Complete: order placed; reset starts a fresh form
		State(statekit.StateID(FormComplete)).
		On(EventReset).Target(statekit.StateID(FormLoading)).Done().
		Build()

	if err != nil {
		return nil, fmt.Errorf("failed to build form machine: %w", err)
	}

	interp := statekit.NewInterpreter(machine)
	interp.Start()

	return &formMachine{interp: interp, runtime: runtime}, nil
}

// status returns the current form status.
func (m *formMachine) status() FormStatus {
	return FormStatus(m.interp.State().Value)
}

// send delivers an event to the machine.
func (m *formMachine) send(event string) {
	m.interp.Send(statekit.Event{Type: statekit.EventType(event)})
}

// stop halts the interpreter.
func (m *formMachine) stop() {
	m.interp.Stop()
}

// metrics returns a copy of the machine's runtime counters.
func (m *formMachine) metrics() FormContext {
	return m.runtime.snapshot()
}
