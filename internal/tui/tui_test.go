package tui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/checkoutkit/internal/adapters/location"
	"github.com/felixgeelhaar/checkoutkit/internal/i18n"
)

func TestNewWizardOptions(t *testing.T) {
	t.Parallel()

	opts := NewWizardOptions()

	assert.Empty(t, opts.CouponPrefill)
	assert.Nil(t, opts.Location)
}

func TestWizardOptions_WithCouponPrefill(t *testing.T) {
	t.Parallel()

	opts := NewWizardOptions().
		WithCouponPrefill("SAVE10")

	assert.Equal(t, "SAVE10", opts.CouponPrefill)
}

func TestWizardOptions_WithLocation(t *testing.T) {
	t.Parallel()

	loc := location.NewMemory()
	opts := NewWizardOptions().
		WithLocation(loc)

	assert.Equal(t, loc, opts.Location)
}

func TestRunWizard_RequiresSession(t *testing.T) {
	t.Parallel()

	result, err := RunWizard(context.Background(), nil, nil, i18n.Default(), NewWizardOptions())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "session is required")
	assert.Nil(t, result)
}
