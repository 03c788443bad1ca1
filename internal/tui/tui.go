// Package tui provides terminal user interface entry points for checkoutkit.
package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/felixgeelhaar/checkoutkit/internal/domain/checkout"
	"github.com/felixgeelhaar/checkoutkit/internal/domain/coupon"
	"github.com/felixgeelhaar/checkoutkit/internal/i18n"
	"github.com/felixgeelhaar/checkoutkit/internal/ports"
)

// WizardOptions configures the checkout wizard.
type WizardOptions struct {
	// CouponPrefill seeds the coupon input, typically from a profile.
	CouponPrefill string
	// Location, when set, renders the fragment surface as an address bar.
	Location ports.Location
}

// NewWizardOptions creates default wizard options.
func NewWizardOptions() WizardOptions {
	return WizardOptions{}
}

// WithCouponPrefill seeds the coupon input field.
func (o WizardOptions) WithCouponPrefill(code string) WizardOptions {
	o.CouponPrefill = code
	return o
}

// WithLocation sets the location surface shown in the address bar.
func (o WizardOptions) WithLocation(loc ports.Location) WizardOptions {
	o.Location = loc
	return o
}

// WizardResult holds the outcome of a wizard run.
type WizardResult struct {
	Submitted  bool
	Cancelled  bool
	StepNumber int
}

// RunWizard runs the interactive checkout wizard until the shopper
// submits the order or quits.
func RunWizard(ctx context.Context, session *checkout.Session, couponForm *coupon.Form, localizer i18n.Localizer, opts WizardOptions) (*WizardResult, error) {
	if session == nil {
		return nil, fmt.Errorf("session is required")
	}

	model := newWizardModel(ctx, session, couponForm, localizer, opts)

	p := tea.NewProgram(model, tea.WithContext(ctx))
	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("checkout wizard failed: %w", err)
	}

	m, ok := finalModel.(wizardModel)
	if !ok {
		return nil, fmt.Errorf("unexpected model type")
	}

	return &WizardResult{
		Submitted:  m.submitted,
		Cancelled:  m.cancelled,
		StepNumber: m.snap.ActiveStepNumber,
	}, nil
}
