package stepper

import (
	"fmt"
	"strings"
)

// Error codes for flow configuration and traversal.
const (
	ErrCodeEmptyFlow       = "EMPTY_FLOW"
	ErrCodeNoNumberedSteps = "NO_NUMBERED_STEPS"
	ErrCodeStepNotFound    = "STEP_NOT_FOUND"
)

// FlowError represents a user-facing flow error with an actionable suggestion.
type FlowError struct {
	Code       string // Error code for categorization
	Message    string // User-friendly error message
	StepNumber int    // Step number if applicable
	Suggestion string // Actionable suggestion to fix the error
	Underlying error  // Wrapped error for error chain
}

// Error returns the formatted error message.
func (e *FlowError) Error() string {
	if e.StepNumber > 0 {
		return fmt.Sprintf("step %d: %s", e.StepNumber, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying error for error chain support.
func (e *FlowError) Unwrap() error {
	return e.Underlying
}

// Format returns a fully formatted error with all details.
func (e *FlowError) Format() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.StepNumber > 0 {
		b.WriteString(fmt.Sprintf("\n  Step number: %d", e.StepNumber))
	}

	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  Suggestion: %s", e.Suggestion))
	}

	if e.Underlying != nil {
		b.WriteString(fmt.Sprintf("\n  Cause: %s", e.Underlying.Error()))
	}

	return b.String()
}

// WithUnderlying returns a new FlowError wrapping another error.
func (e *FlowError) WithUnderlying(err error) *FlowError {
	return &FlowError{
		Code:       e.Code,
		Message:    e.Message,
		StepNumber: e.StepNumber,
		Suggestion: e.Suggestion,
		Underlying: err,
	}
}

// NewEmptyFlowError creates an error for a flow without steps.
func NewEmptyFlowError() *FlowError {
	return &FlowError{
		Code:       ErrCodeEmptyFlow,
		Message:    "checkout flow has no steps",
		Suggestion: "A flow must declare at least one step. Check the flow definition.",
	}
}

// NewNoNumberedStepsError creates an error for a flow without numbered steps.
func NewNoNumberedStepsError() *FlowError {
	return &FlowError{
		Code:       ErrCodeNoNumberedSteps,
		Message:    "checkout flow has no numbered steps",
		Suggestion: "At least one step must be numbered so the shopper can progress. Mark a step as numbered.",
	}
}

// NewStepNotFoundError creates an error for an unresolvable active step.
func NewStepNotFoundError(number int) *FlowError {
	return &FlowError{
		Code:       ErrCodeStepNotFound,
		Message:    "active step number resolves to no step",
		StepNumber: number,
		Suggestion: "Step numbers must stay within the annotated range. This indicates a corrupted session state.",
	}
}
