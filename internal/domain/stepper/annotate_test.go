package stepper_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/checkoutkit/internal/domain/stepper"
)

func descriptors(ids ...string) []stepper.Descriptor {
	steps := make([]stepper.Descriptor, 0, len(ids))
	for _, id := range ids {
		steps = append(steps, stepper.Descriptor{
			ID:       stepper.MustNewStepID(id),
			Numbered: true,
		})
	}
	return steps
}

func TestAnnotate_EmptyFlow_ReturnsError(t *testing.T) {
	t.Parallel()

	_, err := stepper.Annotate(nil)

	require.Error(t, err)
	var flowErr *stepper.FlowError
	require.ErrorAs(t, err, &flowErr)
	assert.Equal(t, stepper.ErrCodeEmptyFlow, flowErr.Code)
}

func TestAnnotate_NoNumberedSteps_ReturnsError(t *testing.T) {
	t.Parallel()

	steps := []stepper.Descriptor{
		{ID: stepper.MustNewStepID("order-summary"), Numbered: false},
		{ID: stepper.MustNewStepID("help"), Numbered: false},
	}

	_, err := stepper.Annotate(steps)

	require.Error(t, err)
	var flowErr *stepper.FlowError
	require.ErrorAs(t, err, &flowErr)
	assert.Equal(t, stepper.ErrCodeNoNumberedSteps, flowErr.Code)
}

func TestAnnotate_NumbersAreContiguousInListOrder(t *testing.T) {
	t.Parallel()

	annotated, err := stepper.Annotate(descriptors("contact", "payment", "review"))
	require.NoError(t, err)

	require.Len(t, annotated, 3)
	assert.Equal(t, 1, annotated[0].Number)
	assert.Equal(t, 2, annotated[1].Number)
	assert.Equal(t, 3, annotated[2].Number)
	assert.Equal(t, 0, annotated[0].Index)
	assert.Equal(t, 1, annotated[1].Index)
	assert.Equal(t, 2, annotated[2].Index)
}

func TestAnnotate_NonNumberedStepsKeepPositionWithoutNumber(t *testing.T) {
	t.Parallel()

	steps := []stepper.Descriptor{
		{ID: stepper.MustNewStepID("order-summary"), Numbered: false},
		{ID: stepper.MustNewStepID("contact"), Numbered: true},
		{ID: stepper.MustNewStepID("upsell"), Numbered: false},
		{ID: stepper.MustNewStepID("payment"), Numbered: true},
	}

	annotated, err := stepper.Annotate(steps)
	require.NoError(t, err)

	require.Len(t, annotated, 4)
	assert.Equal(t, 0, annotated[0].Number)
	assert.False(t, annotated[0].HasNumber())
	assert.Equal(t, 1, annotated[1].Number)
	assert.Equal(t, 0, annotated[2].Number)
	assert.Equal(t, 2, annotated[3].Number)

	// List positions count every step.
	assert.Equal(t, 2, annotated[2].Index)
	assert.Equal(t, 3, annotated[3].Index)
}

func TestActiveStep_ResolvesByNumber(t *testing.T) {
	t.Parallel()

	annotated, err := stepper.Annotate(descriptors("contact", "payment", "review"))
	require.NoError(t, err)

	active, err := stepper.ActiveStep(annotated, 2)

	require.NoError(t, err)
	assert.Equal(t, "payment", active.ID.String())
}

func TestActiveStep_UnknownNumber_ReturnsError(t *testing.T) {
	t.Parallel()

	annotated, err := stepper.Annotate(descriptors("contact"))
	require.NoError(t, err)

	_, err = stepper.ActiveStep(annotated, 7)

	require.Error(t, err)
	var flowErr *stepper.FlowError
	require.ErrorAs(t, err, &flowErr)
	assert.Equal(t, stepper.ErrCodeStepNotFound, flowErr.Code)
	assert.Equal(t, 7, flowErr.StepNumber)
}

func TestNextNumbered_SkipsNonNumberedSteps(t *testing.T) {
	t.Parallel()

	steps := []stepper.Descriptor{
		{ID: stepper.MustNewStepID("contact"), Numbered: true},
		{ID: stepper.MustNewStepID("upsell"), Numbered: false},
		{ID: stepper.MustNewStepID("payment"), Numbered: true},
	}
	annotated, err := stepper.Annotate(steps)
	require.NoError(t, err)

	next, ok := stepper.NextNumbered(annotated, annotated[0])

	require.True(t, ok)
	assert.Equal(t, "payment", next.ID.String())
	assert.Equal(t, 2, next.Number)
}

func TestNextNumbered_LastStep_ReturnsFalse(t *testing.T) {
	t.Parallel()

	annotated, err := stepper.Annotate(descriptors("contact", "review"))
	require.NoError(t, err)

	_, ok := stepper.NextNumbered(annotated, annotated[1])

	assert.False(t, ok)
}

func TestMaxNumber(t *testing.T) {
	t.Parallel()

	annotated, err := stepper.Annotate(descriptors("a", "b", "c", "d"))
	require.NoError(t, err)

	assert.Equal(t, 4, stepper.MaxNumber(annotated))
}

func TestClamp_BringsTargetsIntoRange(t *testing.T) {
	t.Parallel()

	annotated, err := stepper.Annotate(descriptors("a", "b", "c"))
	require.NoError(t, err)

	testCases := []struct {
		name   string
		target int
		want   int
	}{
		{name: "below range", target: 0, want: 1},
		{name: "negative", target: -5, want: 1},
		{name: "in range", target: 2, want: 2},
		{name: "upper bound", target: 3, want: 3},
		{name: "above range", target: 99, want: 3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, stepper.Clamp(annotated, tc.target))
		})
	}
}

func TestAllPreviousComplete_FirstStepIsAlwaysEligible(t *testing.T) {
	t.Parallel()

	annotated, err := stepper.Annotate(descriptors("contact", "payment"))
	require.NoError(t, err)

	nothingComplete := func(string) bool { return false }

	assert.True(t, stepper.AllPreviousComplete(annotated, 1, nothingComplete))
}

func TestAllPreviousComplete_RequiresEveryPredecessor(t *testing.T) {
	t.Parallel()

	annotated, err := stepper.Annotate(descriptors("contact", "payment", "review"))
	require.NoError(t, err)

	complete := map[string]bool{"contact": true}
	isComplete := func(id string) bool { return complete[id] }

	assert.True(t, stepper.AllPreviousComplete(annotated, 2, isComplete))
	assert.False(t, stepper.AllPreviousComplete(annotated, 3, isComplete))

	complete["payment"] = true
	assert.True(t, stepper.AllPreviousComplete(annotated, 3, isComplete))
}

func TestAllPreviousComplete_IgnoresNonNumberedSteps(t *testing.T) {
	t.Parallel()

	steps := []stepper.Descriptor{
		{ID: stepper.MustNewStepID("order-summary"), Numbered: false},
		{ID: stepper.MustNewStepID("contact"), Numbered: true},
		{ID: stepper.MustNewStepID("payment"), Numbered: true},
	}
	annotated, err := stepper.Annotate(steps)
	require.NoError(t, err)

	// Only the numbered predecessor counts; the summary never gates.
	isComplete := func(id string) bool { return id == "contact" }

	assert.True(t, stepper.AllPreviousComplete(annotated, 2, isComplete))
}
