package stepper_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/checkoutkit/internal/domain/stepper"
)

func TestNewStepID_EmptyString_ReturnsError(t *testing.T) {
	t.Parallel()

	_, err := stepper.NewStepID("")

	require.Error(t, err)
	require.ErrorIs(t, err, stepper.ErrEmptyStepID)
}

func TestNewStepID_WhitespaceOnly_ReturnsError(t *testing.T) {
	t.Parallel()

	_, err := stepper.NewStepID("   ")

	require.Error(t, err)
	require.ErrorIs(t, err, stepper.ErrEmptyStepID)
}

func TestNewStepID_ValidID_ReturnsStepID(t *testing.T) {
	t.Parallel()

	testCases := []string{
		"contact-form",
		"payment-method",
		"order_summary",
		"review",
		"step2",
	}

	for _, value := range testCases {
		t.Run(value, func(t *testing.T) {
			t.Parallel()

			id, err := stepper.NewStepID(value)

			require.NoError(t, err)
			assert.Equal(t, value, id.String())
		})
	}
}

func TestNewStepID_InvalidCharacters_ReturnsError(t *testing.T) {
	t.Parallel()

	invalidIDs := []string{
		"contact form",
		"contact/form",
		"-leading-hyphen",
		"step:two",
		"step\ttwo",
	}

	for _, value := range invalidIDs {
		t.Run(value, func(t *testing.T) {
			t.Parallel()

			_, err := stepper.NewStepID(value)

			require.Error(t, err)
			require.ErrorIs(t, err, stepper.ErrInvalidStepID)
		})
	}
}

func TestStepID_Equals_ComparesValues(t *testing.T) {
	t.Parallel()

	a := stepper.MustNewStepID("payment")
	b := stepper.MustNewStepID("payment")
	c := stepper.MustNewStepID("review")

	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(c))
}

func TestStepID_IsZero(t *testing.T) {
	t.Parallel()

	var zero stepper.StepID
	assert.True(t, zero.IsZero())

	id := stepper.MustNewStepID("contact")
	assert.False(t, id.IsZero())
}

func TestMustNewStepID_InvalidValue_Panics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		stepper.MustNewStepID("not valid")
	})
}
