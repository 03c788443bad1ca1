package flowdef

import (
	"context"
	"fmt"
	"net/mail"
	"sort"
	"sync"
	"time"

	"github.com/felixgeelhaar/checkoutkit/internal/domain/completion"
)

// Built-in completion check names.
const (
	// CheckAlways reports every step complete.
	CheckAlways = "always"
	// CheckPaymentMethodSelected requires a selected payment method.
	CheckPaymentMethodSelected = "payment-method-selected"
	// CheckEmailFilled requires a parseable address in the email field.
	CheckEmailFilled = "email-filled"
	// CheckFieldFilledPrefix marks checks requiring one named field,
	// e.g. "field-filled:postal-code".
	CheckFieldFilledPrefix = "field-filled:"
	// CheckSimulatedProcessing defers and settles complete after a short
	// delay. Useful for exercising the validating phase in demos.
	CheckSimulatedProcessing = "simulated-processing"
)

// simulatedProcessingDelay is how long the demo check stays pending.
const simulatedProcessingDelay = 700 * time.Millisecond

// CheckRegistry maps check names to completion check functions. Flows
// reference checks by name; plugins and hosts register additional ones.
type CheckRegistry struct {
	mu     sync.RWMutex
	checks map[string]completion.CheckFunc
}

// NewCheckRegistry creates an empty registry.
func NewCheckRegistry() *CheckRegistry {
	return &CheckRegistry{
		checks: make(map[string]completion.CheckFunc),
	}
}

// Register adds a named check. Registering a name twice is an error.
func (r *CheckRegistry) Register(name string, check completion.CheckFunc) error {
	if name == "" {
		return fmt.Errorf("check name is required")
	}
	if check == nil {
		return fmt.Errorf("check %q is nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.checks[name]; exists {
		return NewDuplicateCheckError(name)
	}
	r.checks[name] = check
	return nil
}

// Lookup returns the check registered under name.
func (r *CheckRegistry) Lookup(name string) (completion.CheckFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	check, ok := r.checks[name]
	return check, ok
}

// Names returns all registered check names, sorted.
func (r *CheckRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.checks))
	for name := range r.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegisterBuiltins registers the checks every flow can rely on.
func RegisterBuiltins(r *CheckRegistry) error {
	builtins := map[string]completion.CheckFunc{
		CheckAlways:                checkAlways,
		CheckPaymentMethodSelected: checkPaymentMethodSelected,
		CheckEmailFilled:           checkEmailFilled,
		CheckSimulatedProcessing:   checkSimulatedProcessing,
	}
	for name, check := range builtins {
		if err := r.Register(name, check); err != nil {
			return err
		}
	}
	return nil
}

func checkAlways(_ context.Context, _ completion.Request) completion.Verdict {
	return completion.Complete()
}

func checkPaymentMethodSelected(_ context.Context, req completion.Request) completion.Verdict {
	if req.PaymentMethodID == "" {
		return completion.Incomplete()
	}
	return completion.Complete()
}

func checkEmailFilled(_ context.Context, req completion.Request) completion.Verdict {
	addr := req.Fields["email"]
	if addr == "" {
		return completion.Incomplete()
	}
	if _, err := mail.ParseAddress(addr); err != nil {
		return completion.Incomplete()
	}
	return completion.Complete()
}

func checkSimulatedProcessing(_ context.Context, _ completion.Request) completion.Verdict {
	settled := make(chan bool, 1)
	time.AfterFunc(simulatedProcessingDelay, func() {
		settled <- true
	})
	return completion.Defer(settled)
}

// FieldFilledCheck builds a check requiring a non-empty named field.
func FieldFilledCheck(field string) completion.CheckFunc {
	return func(_ context.Context, req completion.Request) completion.Verdict {
		if req.Fields[field] == "" {
			return completion.Incomplete()
		}
		return completion.Complete()
	}
}
