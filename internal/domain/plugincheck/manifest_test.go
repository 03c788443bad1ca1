package plugincheck_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/checkoutkit/internal/domain/plugincheck"
)

func validManifest() plugincheck.Manifest {
	return plugincheck.Manifest{
		ID:        "acme-checks",
		Name:      "Acme Checks",
		Version:   "1.0.0",
		MinEngine: "1.0.0",
		Module:    "checks.wasm",
		Checksum:  "abc123",
		Checks: []plugincheck.CheckSpec{
			{Name: "acme-fraud", Export: "fraud_check"},
		},
	}
}

func TestManifest_Validate(t *testing.T) {
	t.Parallel()

	valid := validManifest()
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*plugincheck.Manifest)
	}{
		{name: "missing id", mutate: func(m *plugincheck.Manifest) { m.ID = "" }},
		{name: "missing name", mutate: func(m *plugincheck.Manifest) { m.Name = "" }},
		{name: "missing min_engine", mutate: func(m *plugincheck.Manifest) { m.MinEngine = "" }},
		{name: "missing module", mutate: func(m *plugincheck.Manifest) { m.Module = "" }},
		{name: "missing checksum", mutate: func(m *plugincheck.Manifest) { m.Checksum = "" }},
		{name: "no checks", mutate: func(m *plugincheck.Manifest) { m.Checks = nil }},
		{name: "check without name", mutate: func(m *plugincheck.Manifest) { m.Checks[0].Name = "" }},
		{name: "check without export", mutate: func(m *plugincheck.Manifest) { m.Checks[0].Export = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := validManifest()
			tt.mutate(&m)

			err := m.Validate()

			require.ErrorIs(t, err, plugincheck.ErrManifestInvalid)
		})
	}
}

// writePlugin lays out a plugin directory with a manifest whose checksum
// matches the given module bytes.
func writePlugin(t *testing.T, basePath, dir string, module []byte) {
	t.Helper()

	pluginDir := filepath.Join(basePath, dir)
	require.NoError(t, os.MkdirAll(pluginDir, 0o755))

	modulePath := filepath.Join(pluginDir, "checks.wasm")
	require.NoError(t, os.WriteFile(modulePath, module, 0o644))

	checksum, err := plugincheck.CalculateChecksum(modulePath)
	require.NoError(t, err)

	manifest := fmt.Sprintf(`id: %s
name: Acme Checks
version: 1.0.0
min_engine: 1.0.0
module: checks.wasm
checksum: %s
checks:
  - name: acme-fraud
    export: fraud_check
`, dir, checksum)
	require.NoError(t, os.WriteFile(filepath.Join(pluginDir, "plugin.yaml"), []byte(manifest), 0o644))
}

func TestLoader_Load_VerifiesChecksum(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	module := []byte("pretend wasm bytes")
	writePlugin(t, base, "acme", module)

	plugin, err := plugincheck.NewLoader(base).Load("acme")

	require.NoError(t, err)
	assert.Equal(t, "acme", plugin.Manifest.ID)
	assert.Equal(t, module, plugin.Module)
}

func TestLoader_Load_ChecksumMismatch(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	writePlugin(t, base, "acme", []byte("original bytes"))
	// Tamper with the module after the manifest was written.
	require.NoError(t, os.WriteFile(
		filepath.Join(base, "acme", "checks.wasm"), []byte("tampered bytes"), 0o644))

	_, err := plugincheck.NewLoader(base).Load("acme")

	require.ErrorIs(t, err, plugincheck.ErrChecksumMismatch)
}

func TestLoader_Load_MissingManifest(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "empty"), 0o755))

	_, err := plugincheck.NewLoader(base).Load("empty")

	require.ErrorIs(t, err, plugincheck.ErrManifestNotFound)
}

func TestLoader_Load_MissingModule(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	writePlugin(t, base, "acme", []byte("module"))
	require.NoError(t, os.Remove(filepath.Join(base, "acme", "checks.wasm")))

	_, err := plugincheck.NewLoader(base).Load("acme")

	require.ErrorIs(t, err, plugincheck.ErrModuleNotFound)
}

func TestLoader_Load_IncompatibleEngine(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	pluginDir := filepath.Join(base, "future")
	require.NoError(t, os.MkdirAll(pluginDir, 0o755))
	manifest := `id: future
name: Future Checks
version: 1.0.0
min_engine: 99.0.0
module: checks.wasm
checksum: irrelevant
checks:
  - name: future-check
    export: run
`
	require.NoError(t, os.WriteFile(filepath.Join(pluginDir, "plugin.yaml"), []byte(manifest), 0o644))

	_, err := plugincheck.NewLoader(base).Load("future")

	require.ErrorIs(t, err, plugincheck.ErrEngineIncompatible)
}

func TestLoader_LoadManifest_MalformedYAML(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	pluginDir := filepath.Join(base, "broken")
	require.NoError(t, os.MkdirAll(pluginDir, 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(pluginDir, "plugin.yaml"), []byte("id: [unclosed"), 0o644))

	_, err := plugincheck.NewLoader(base).LoadManifest("broken")

	require.ErrorIs(t, err, plugincheck.ErrManifestInvalid)
}

func TestLoader_List(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	writePlugin(t, base, "alpha", []byte("a"))
	writePlugin(t, base, "beta", []byte("b"))
	// A directory without a manifest and a stray file are both skipped.
	require.NoError(t, os.MkdirAll(filepath.Join(base, "not-a-plugin"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "README.md"), []byte("docs"), 0o644))

	plugins, err := plugincheck.NewLoader(base).List()

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alpha", "beta"}, plugins)
}

func TestLoader_List_MissingBasePath(t *testing.T) {
	t.Parallel()

	plugins, err := plugincheck.NewLoader(filepath.Join(t.TempDir(), "absent")).List()

	require.NoError(t, err)
	assert.Empty(t, plugins)
}

func TestCalculateChecksum_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := plugincheck.CalculateChecksum(filepath.Join(t.TempDir(), "absent.wasm"))

	require.Error(t, err)
}
