package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionCommand(t *testing.T) {
	assert.Equal(t, "version", versionCmd.Use)

	output := captureStdout(t, func() {
		versionCmd.Run(versionCmd, nil)
	})

	assert.Contains(t, output, "checkoutkit dev")
	assert.Contains(t, output, "commit: none")
}
