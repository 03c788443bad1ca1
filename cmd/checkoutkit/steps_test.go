package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/checkoutkit/internal/domain/stepper"
)

const testFlowYAML = `
steps:
  - id: order-summary
    title: Order summary
    numbered: false
  - id: contact
    title: Contact details
  - id: review
`

func writeTestFlow(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "checkout.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testFlowYAML), 0o644))
	return path
}

func TestStepsCommand_UseAndShort(t *testing.T) {
	assert.Equal(t, "steps", stepsCmd.Use)
	assert.Equal(t, "List the steps of the configured flow", stepsCmd.Short)
}

func TestStepsCommand_HasFlags(t *testing.T) {
	tests := []struct {
		name     string
		flagName string
		defValue string
	}{
		{"flow_flag", "flow", ""},
		{"plugins_flag", "plugins", ""},
		{"json_flag", "json", "false"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag := stepsCmd.Flags().Lookup(tt.flagName)
			require.NotNil(t, flag, "flag %s should exist", tt.flagName)
			assert.Equal(t, tt.defValue, flag.DefValue)
		})
	}
}

func TestRunSteps_TextOutput(t *testing.T) {
	useMissingConfig(t)
	flowPath := writeTestFlow(t)

	require.NoError(t, stepsCmd.Flags().Set("flow", flowPath))
	t.Cleanup(func() {
		stepsCmd.Flags().Lookup("flow").Changed = false
		stepsFlow = ""
	})

	var runErr error
	output := captureStdout(t, func() {
		runErr = runSteps(stepsCmd, nil)
	})

	require.NoError(t, runErr)
	assert.Contains(t, output, "Checkout Flow")
	assert.Contains(t, output, "- order-summary (Order summary)")
	assert.Contains(t, output, "1. contact (Contact details)")
	assert.Contains(t, output, "2. review")
	assert.Contains(t, output, "3 steps, 2 numbered")
}

func TestRunSteps_MissingFlow(t *testing.T) {
	useMissingConfig(t)

	require.NoError(t, stepsCmd.Flags().Set("flow", filepath.Join(t.TempDir(), "absent.yaml")))
	t.Cleanup(func() {
		stepsCmd.Flags().Lookup("flow").Changed = false
		stepsFlow = ""
	})

	err := runSteps(stepsCmd, nil)

	require.Error(t, err)
	assert.Contains(t, formatError(err), "flow definition not found")
}

func TestOutputStepsJSON(t *testing.T) {
	steps, err := stepper.Annotate([]stepper.Descriptor{
		{ID: stepper.MustNewStepID("order-summary"), Numbered: false, Title: "Order summary"},
		{ID: stepper.MustNewStepID("contact"), Numbered: true, Title: "Contact details"},
	})
	require.NoError(t, err)

	output := captureStdout(t, func() {
		require.NoError(t, outputStepsJSON(steps))
	})

	var parsed []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(output), &parsed))
	require.Len(t, parsed, 2)

	assert.Equal(t, "order-summary", parsed[0]["id"])
	assert.Equal(t, false, parsed[0]["numbered"])
	_, hasNumber := parsed[0]["number"]
	assert.False(t, hasNumber, "non-numbered steps omit the number")

	assert.Equal(t, "contact", parsed[1]["id"])
	assert.Equal(t, true, parsed[1]["numbered"])
	assert.Equal(t, float64(1), parsed[1]["number"])
}
