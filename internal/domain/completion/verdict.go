// Package completion tracks per-step completion state and gates advancement
// on per-step completion checks, supporting both immediate and deferred
// outcomes.
package completion

import "context"

// Request carries the session data a completion check may inspect.
type Request struct {
	// SessionID identifies the checkout session issuing the check.
	SessionID string

	// StepID identifies the step being checked.
	StepID string

	// PaymentMethodID identifies the currently selected payment method.
	PaymentMethodID string

	// Fields holds form values captured so far, keyed by field name.
	Fields map[string]string
}

// Verdict is the outcome of a completion check. A synchronous check sets
// Done directly and leaves Pending nil. A deferred check delivers the final
// outcome on Pending exactly once; a closed channel counts as incomplete.
type Verdict struct {
	Done    bool
	Pending <-chan bool
}

// Complete returns a synchronous verdict marking the step complete.
func Complete() Verdict {
	return Verdict{Done: true}
}

// Incomplete returns a synchronous verdict withholding advancement.
func Incomplete() Verdict {
	return Verdict{Done: false}
}

// Defer returns a verdict whose outcome arrives later on ch.
func Defer(ch <-chan bool) Verdict {
	return Verdict{Pending: ch}
}

// IsDeferred reports whether the verdict settles asynchronously.
func (v Verdict) IsDeferred() bool {
	return v.Pending != nil
}

// CheckFunc decides whether a step's exit condition is satisfied.
// Implementations either settle synchronously or hand back a deferred
// verdict; ctx bounds any work the check performs before returning.
type CheckFunc func(ctx context.Context, req Request) Verdict
