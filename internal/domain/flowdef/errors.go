package flowdef

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorization.
const (
	ErrCodeFlowNotFound   = "FLOW_NOT_FOUND"
	ErrCodeFlowParse      = "FLOW_PARSE"
	ErrCodeFlowInvalid    = "FLOW_INVALID"
	ErrCodeCheckUnknown   = "CHECK_UNKNOWN"
	ErrCodeCheckDuplicate = "CHECK_DUPLICATE"
)

// DefError is a flow definition error with actionable suggestions.
type DefError struct {
	Code       string // Error code for categorization (e.g., "FLOW_NOT_FOUND")
	Message    string // User-friendly error message
	Context    string // File path or step ID context
	Suggestion string // Actionable suggestion to fix the error
	Underlying error  // Wrapped error for error chain
}

// Error returns the formatted error message.
func (e *DefError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s (at %s)", e.Message, e.Context)
	}
	return e.Message
}

// Unwrap returns the underlying error for error chain support.
func (e *DefError) Unwrap() error {
	return e.Underlying
}

// Is supports errors.Is() for comparing error codes.
func (e *DefError) Is(target error) bool {
	if t, ok := target.(*DefError); ok {
		return e.Code == t.Code
	}
	return false
}

// Format returns a fully formatted error with all details.
func (e *DefError) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)
	if e.Context != "" {
		fmt.Fprintf(&b, "\n  Location: %s", e.Context)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n  Suggestion: %s", e.Suggestion)
	}
	return b.String()
}

// WithUnderlying returns a new DefError wrapping another error.
func (e *DefError) WithUnderlying(err error) *DefError {
	return &DefError{
		Code:       e.Code,
		Message:    e.Message,
		Context:    e.Context,
		Suggestion: e.Suggestion,
		Underlying: err,
	}
}

// NewFlowNotFoundError creates an error for a missing flow file.
func NewFlowNotFoundError(path string) *DefError {
	return &DefError{
		Code:       ErrCodeFlowNotFound,
		Message:    fmt.Sprintf("flow definition not found: %s", path),
		Context:    path,
		Suggestion: "Run 'checkoutkit init' to create a starter flow, or check the file path.",
	}
}

// NewFlowParseError creates an error for YAML parsing failures.
func NewFlowParseError(path string, err error) *DefError {
	return &DefError{
		Code:       ErrCodeFlowParse,
		Message:    "failed to parse flow definition",
		Context:    path,
		Suggestion: "Check your YAML syntax. Common issues: incorrect indentation, missing colons, or unquoted special characters.",
		Underlying: err,
	}
}

// NewFlowInvalidError creates an error for a structurally invalid flow.
func NewFlowInvalidError(message, suggestion string) *DefError {
	return &DefError{
		Code:       ErrCodeFlowInvalid,
		Message:    message,
		Suggestion: suggestion,
	}
}

// NewUnknownCheckError creates an error for a check name with no
// registered implementation.
func NewUnknownCheckError(name, stepID string, available []string) *DefError {
	suggestion := "Register the check before building the flow."
	if len(available) > 0 {
		suggestion = fmt.Sprintf("Available checks: %s", strings.Join(available, ", "))
	}
	return &DefError{
		Code:       ErrCodeCheckUnknown,
		Message:    fmt.Sprintf("completion check '%s' is not registered", name),
		Context:    stepID,
		Suggestion: suggestion,
	}
}

// NewDuplicateCheckError creates an error for a check name registered twice.
func NewDuplicateCheckError(name string) *DefError {
	return &DefError{
		Code:       ErrCodeCheckDuplicate,
		Message:    fmt.Sprintf("completion check '%s' is already registered", name),
		Suggestion: "Check names must be unique; rename the plugin check or drop the duplicate.",
	}
}

// IsDefError checks if an error is a DefError with a specific code.
func IsDefError(err error, code string) bool {
	var de *DefError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}
