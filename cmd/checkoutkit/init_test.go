package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/checkoutkit/internal/app"
	"github.com/felixgeelhaar/checkoutkit/internal/domain/flowdef"
)

func TestInitCommand_UseAndShort(t *testing.T) {
	assert.Equal(t, "init", initCmd.Use)
	assert.Equal(t, "Write a starter flow and configuration", initCmd.Short)
}

func TestInitCommand_HasFlags(t *testing.T) {
	dirFlag := initCmd.Flags().Lookup("dir")
	require.NotNil(t, dirFlag)
	assert.Equal(t, ".", dirFlag.DefValue)
	assert.Equal(t, "d", dirFlag.Shorthand)

	forceFlag := initCmd.Flags().Lookup("force")
	require.NotNil(t, forceFlag)
	assert.Equal(t, "false", forceFlag.DefValue)
}

// intoTempDir points the init target at a fresh directory for one test.
func intoTempDir(t *testing.T) string {
	t.Helper()
	oldDir, oldForce := initDir, initForce
	initDir = t.TempDir()
	initForce = false
	t.Cleanup(func() { initDir, initForce = oldDir, oldForce })
	return initDir
}

func TestRunInit_WritesStarterFiles(t *testing.T) {
	dir := intoTempDir(t)

	var runErr error
	output := captureStdout(t, func() {
		runErr = runInit(initCmd, nil)
	})

	require.NoError(t, runErr)
	assert.Contains(t, output, "✓ wrote")
	assert.Contains(t, output, "Next: checkoutkit run")
	assert.FileExists(t, filepath.Join(dir, "checkout.yaml"))
	assert.FileExists(t, filepath.Join(dir, "checkoutkit.toml"))
}

func TestRunInit_StarterFlowIsUsable(t *testing.T) {
	dir := intoTempDir(t)
	_ = captureStdout(t, func() {
		require.NoError(t, runInit(initCmd, nil))
	})

	data, err := os.ReadFile(filepath.Join(dir, "checkout.yaml"))
	require.NoError(t, err)

	flow, err := flowdef.Parse(data)
	require.NoError(t, err)

	registry := flowdef.NewCheckRegistry()
	require.NoError(t, flowdef.RegisterBuiltins(registry))
	steps, err := flowdef.Build(flow, registry)
	require.NoError(t, err, "every starter check resolves against the builtins")
	assert.Len(t, steps, 5)
}

func TestRunInit_StarterConfigIsUsable(t *testing.T) {
	dir := intoTempDir(t)
	_ = captureStdout(t, func() {
		require.NoError(t, runInit(initCmd, nil))
	})

	cfg, err := app.LoadConfig(filepath.Join(dir, "checkoutkit.toml"))
	require.NoError(t, err)

	assert.Equal(t, "checkout.yaml", cfg.Flow)
	assert.Equal(t, "en", cfg.Locale)
	assert.Equal(t, []string{"SAVE10", "WELCOME"}, cfg.Coupons)
}

func TestRunInit_RefusesToOverwrite(t *testing.T) {
	dir := intoTempDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "checkout.yaml"), []byte("mine"), 0o644))

	var err error
	_ = captureStdout(t, func() {
		err = runInit(initCmd, nil)
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	// The existing file is untouched.
	data, readErr := os.ReadFile(filepath.Join(dir, "checkout.yaml"))
	require.NoError(t, readErr)
	assert.Equal(t, "mine", string(data))
}

func TestRunInit_ForceOverwrites(t *testing.T) {
	dir := intoTempDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "checkout.yaml"), []byte("mine"), 0o644))
	initForce = true

	_ = captureStdout(t, func() {
		require.NoError(t, runInit(initCmd, nil))
	})

	data, err := os.ReadFile(filepath.Join(dir, "checkout.yaml"))
	require.NoError(t, err)
	assert.NotEqual(t, "mine", string(data))
}
