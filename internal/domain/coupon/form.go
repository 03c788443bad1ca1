// Package coupon implements the coupon entry form: local shape
// validation, backend application, and the analytics events both
// outcomes emit.
package coupon

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/felixgeelhaar/checkoutkit/internal/domain/analytics"
	"github.com/felixgeelhaar/checkoutkit/internal/ports"
)

// Status represents the coupon form's state.
type Status string

const (
	// StatusIdle means no coupon has been tried.
	StatusIdle Status = "idle"
	// StatusPending means a coupon application is in flight.
	StatusPending Status = "pending"
	// StatusApplied means the last coupon was accepted.
	StatusApplied Status = "applied"
	// StatusRejected means the last coupon was refused.
	StatusRejected Status = "rejected"
)

// Error types carried by coupon error events.
const (
	errorTypeInvalidCode = "invalid_code"
	errorTypeRejected    = "rejected"
)

// maxCodeLength caps coupon codes before they reach the backend.
const maxCodeLength = 50

// codePattern matches well-formed coupon codes.
var codePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Sentinel errors for coupon application.
var (
	// ErrInvalidCode is returned for codes that fail the local shape check.
	ErrInvalidCode = errors.New("coupon code is not well-formed")
	// ErrApplyPending is returned when an application is already in flight.
	ErrApplyPending = errors.New("a coupon application is already in flight")
)

// ValidateFunc asks the backend whether a well-formed code applies to
// the order. A nil ValidateFunc accepts every well-formed code.
type ValidateFunc func(ctx context.Context, code string) error

// AppliedPayload is the analytics payload of an accepted coupon.
type AppliedPayload struct {
	Coupon string `json:"coupon"`
}

// ErrorPayload is the analytics payload of a refused coupon.
type ErrorPayload struct {
	ErrorType string `json:"error_type"`
}

// Form tracks one coupon entry surface.
//
// Apply blocks while the backend validates; the pending status is
// observable from other goroutines during that window. All methods are
// safe for concurrent use.
type Form struct {
	mu       sync.Mutex
	status   Status
	code     string
	err      error
	validate ValidateFunc
	sink     analytics.Sink
	logger   ports.Logger
}

// NewForm builds a coupon form. The sink defaults to a null sink.
func NewForm(validate ValidateFunc, sink analytics.Sink, logger ports.Logger) (*Form, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if sink == nil {
		sink = analytics.NewNullSink()
	}
	return &Form{
		status:   StatusIdle,
		validate: validate,
		sink:     sink,
		logger:   logger,
	}, nil
}

// Apply validates and applies a coupon code. Codes failing the local
// shape check never reach the backend; both refusal paths emit an error
// event, and acceptance emits an applied event.
func (f *Form) Apply(ctx context.Context, raw string) error {
	code := strings.TrimSpace(raw)

	f.mu.Lock()
	if f.status == StatusPending {
		f.mu.Unlock()
		return ErrApplyPending
	}

	if code == "" || len(code) > maxCodeLength || !codePattern.MatchString(code) {
		f.status = StatusRejected
		f.code = code
		f.err = ErrInvalidCode
		f.mu.Unlock()

		f.record(analytics.EventCouponError, ErrorPayload{ErrorType: errorTypeInvalidCode})
		f.logger.Warn(ctx, "coupon code rejected locally", ports.F("length", len(code)))
		return ErrInvalidCode
	}

	f.status = StatusPending
	f.code = code
	f.err = nil
	f.mu.Unlock()

	var applyErr error
	if f.validate != nil {
		applyErr = f.validate(ctx, code)
	}

	f.mu.Lock()
	if applyErr != nil {
		f.status = StatusRejected
		f.err = applyErr
		f.mu.Unlock()

		f.record(analytics.EventCouponError, ErrorPayload{ErrorType: errorTypeRejected})
		f.logger.Warn(ctx, "coupon refused", ports.F("error", applyErr))
		return fmt.Errorf("coupon refused: %w", applyErr)
	}
	f.status = StatusApplied
	f.mu.Unlock()

	f.record(analytics.EventCouponApplied, AppliedPayload{Coupon: code})
	f.logger.Info(ctx, "coupon applied", ports.F("coupon", code))
	return nil
}

// Status returns the form's current state.
func (f *Form) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// Code returns the last code the shopper tried.
func (f *Form) Code() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.code
}

// Err returns why the last application failed, if it did.
func (f *Form) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Reset clears the form back to idle. A pending application keeps its
// state; its outcome will land after the in-flight call returns.
func (f *Form) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status == StatusPending {
		return
	}
	f.status = StatusIdle
	f.code = ""
	f.err = nil
}

func (f *Form) record(eventType analytics.EventType, payload interface{}) {
	_ = f.sink.Record(analytics.NewEvent(eventType, payload))
}
