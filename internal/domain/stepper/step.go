// Package stepper provides step descriptors, annotation, and traversal for
// checkout flows. Annotation assigns sequential numbers to navigable steps
// while preserving the position of informational ones.
package stepper

import (
	"github.com/felixgeelhaar/checkoutkit/internal/domain/completion"
)

// Descriptor describes a single step in a checkout flow.
// Descriptors are immutable inputs; identity is ID and uniqueness is a
// caller invariant that is only shape-checked.
type Descriptor struct {
	// ID identifies the step within the flow.
	ID StepID

	// Numbered marks the step as part of the sequential progression.
	// Non-numbered steps are informational and never own a step number.
	Numbered bool

	// Title is the step heading.
	Title string

	// ActiveContent is shown while the step is active.
	ActiveContent string

	// IncompleteContent is shown when the step is neither active nor complete.
	IncompleteContent string

	// CompleteContent is shown once the step is complete.
	CompleteContent string

	// IsComplete gates advancement past this step. Nil treats the step as
	// unconditionally complete.
	IsComplete completion.CheckFunc

	// IsEditable controls whether the edit affordance is offered once the
	// shopper has moved past this step. Nil means editable.
	IsEditable func() bool

	// EditLabel overrides the accessible label of the edit affordance.
	EditLabel func() string

	// ContinueLabel overrides the accessible label of the continue action.
	ContinueLabel func() string
}

// Annotated is a descriptor with its assigned position in the flow.
type Annotated struct {
	Descriptor

	// Number is the 1-based ordinal among numbered steps, assigned in list
	// order. Zero when the step is not numbered.
	Number int

	// Index is the 0-based position in the full list, counting
	// non-numbered steps.
	Index int
}

// HasNumber reports whether the step participates in numbered progression.
func (a Annotated) HasNumber() bool {
	return a.Number > 0
}
