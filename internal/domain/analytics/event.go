// Package analytics provides checkout event recording for external
// analytics collaborators. The core emits events and never interprets
// responses.
package analytics

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// EventType identifies the kind of checkout event.
type EventType string

// Event types emitted by the checkout core.
const (
	// EventStepNumberChange fires on step-number-change intent, before the
	// new step number is committed.
	EventStepNumberChange EventType = "STEP_NUMBER_CHANGE_EVENT"

	// EventCouponApplied fires when a coupon is accepted.
	EventCouponApplied EventType = "a8c_checkout_add_coupon"

	// EventCouponError fires when a coupon is rejected.
	EventCouponError EventType = "a8c_checkout_add_coupon_error"
)

// Event is a single analytics notification.
type Event struct {
	// ID is the unique event identifier.
	ID string `json:"id"`

	// Type of the event.
	Type EventType `json:"type"`

	// Payload carries event-specific data; consumers define its shape.
	Payload interface{} `json:"payload,omitempty"`

	// SessionID identifies the checkout session that emitted the event.
	SessionID string `json:"session_id,omitempty"`

	// At is when the event occurred.
	At time.Time `json:"at"`
}

// NewEvent creates an event with a fresh identifier and timestamp.
func NewEvent(eventType EventType, payload interface{}) Event {
	return Event{
		ID:      uuid.New().String(),
		Type:    eventType,
		Payload: payload,
		At:      time.Now().UTC(),
	}
}

// WithSession returns a copy of the event tagged with a session ID.
func (e Event) WithSession(sessionID string) Event {
	e.SessionID = sessionID
	return e
}

// Validate checks that the event has all required fields.
func (e Event) Validate() error {
	if e.ID == "" {
		return errors.New("event ID is required")
	}
	if e.Type == "" {
		return errors.New("event type is required")
	}
	if e.At.IsZero() {
		return errors.New("event timestamp is required")
	}
	return nil
}
