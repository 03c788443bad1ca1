// Package plugincheck loads WASM plugins that contribute completion
// checks. Plugins ship a manifest next to their module; exported check
// functions read the completion request as JSON on stdin and return a
// nonzero i32 for complete.
package plugincheck

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Loader errors.
var (
	ErrManifestNotFound   = errors.New("plugin manifest not found")
	ErrModuleNotFound     = errors.New("plugin module not found")
	ErrChecksumMismatch   = errors.New("plugin checksum mismatch")
	ErrManifestInvalid    = errors.New("plugin manifest invalid")
	ErrEngineIncompatible = errors.New("plugin requires an incompatible engine")
)

// CheckSpec maps a check name to an exported WASM function.
type CheckSpec struct {
	// Name is the check name flows reference.
	Name string `yaml:"name"`

	// Export is the exported function implementing the check.
	Export string `yaml:"export"`
}

// Manifest describes a check plugin and its requirements.
type Manifest struct {
	// ID is the unique plugin identifier
	ID string `yaml:"id"`

	// Name is the human-readable name
	Name string `yaml:"name"`

	// Version is the plugin version
	Version string `yaml:"version"`

	// Description of what the plugin provides
	Description string `yaml:"description,omitempty"`

	// MinEngine is the lowest engine version the plugin runs on
	MinEngine string `yaml:"min_engine"`

	// Module is the path to the WASM module relative to the manifest
	Module string `yaml:"module"`

	// Checksum is the SHA256 hash of the module
	Checksum string `yaml:"checksum"`

	// Checks lists the completion checks the plugin exports
	Checks []CheckSpec `yaml:"checks"`
}

// Validate checks if the manifest is valid.
func (m *Manifest) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("%w: missing id", ErrManifestInvalid)
	}
	if m.Name == "" {
		return fmt.Errorf("%w: missing name", ErrManifestInvalid)
	}
	if m.MinEngine == "" {
		return fmt.Errorf("%w: missing min_engine", ErrManifestInvalid)
	}
	if m.Module == "" {
		return fmt.Errorf("%w: missing module path", ErrManifestInvalid)
	}
	if m.Checksum == "" {
		return fmt.Errorf("%w: missing checksum", ErrManifestInvalid)
	}
	if len(m.Checks) == 0 {
		return fmt.Errorf("%w: plugin exports no checks", ErrManifestInvalid)
	}
	for i, c := range m.Checks {
		if c.Name == "" {
			return fmt.Errorf("%w: check %d has no name", ErrManifestInvalid, i+1)
		}
		if c.Export == "" {
			return fmt.Errorf("%w: check %q names no export", ErrManifestInvalid, c.Name)
		}
	}
	return nil
}

// Plugin is a loaded, checksum-verified check plugin.
type Plugin struct {
	Manifest Manifest
	Module   []byte
}

// Loader loads check plugins from the filesystem.
type Loader struct {
	// basePath is the directory containing plugin directories
	basePath string
}

// NewLoader creates a new plugin loader.
func NewLoader(basePath string) *Loader {
	return &Loader{basePath: basePath}
}

// LoadManifest loads a plugin manifest from a directory.
func (l *Loader) LoadManifest(pluginDir string) (*Manifest, error) {
	manifestPath := filepath.Join(l.basePath, pluginDir, "plugin.yaml")
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrManifestNotFound, manifestPath)
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrManifestInvalid, err)
	}

	if err := manifest.Validate(); err != nil {
		return nil, err
	}

	return &manifest, nil
}

// Load loads a complete plugin from a directory and verifies its
// checksum and engine compatibility.
func (l *Loader) Load(pluginDir string) (*Plugin, error) {
	manifest, err := l.LoadManifest(pluginDir)
	if err != nil {
		return nil, err
	}

	if err := Compatible(manifest.MinEngine); err != nil {
		return nil, err
	}

	modulePath := filepath.Join(l.basePath, pluginDir, manifest.Module)
	moduleData, err := os.ReadFile(modulePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrModuleNotFound, modulePath)
		}
		return nil, fmt.Errorf("failed to read module: %w", err)
	}

	actualChecksum := sha256Hex(moduleData)
	if actualChecksum != manifest.Checksum {
		return nil, fmt.Errorf("%w: expected %s, got %s",
			ErrChecksumMismatch, manifest.Checksum, actualChecksum)
	}

	return &Plugin{
		Manifest: *manifest,
		Module:   moduleData,
	}, nil
}

// List returns the plugin directories under the base path.
func (l *Loader) List() ([]string, error) {
	entries, err := os.ReadDir(l.basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read plugins directory: %w", err)
	}

	var plugins []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		manifestPath := filepath.Join(l.basePath, entry.Name(), "plugin.yaml")
		if _, err := os.Stat(manifestPath); err == nil {
			plugins = append(plugins, entry.Name())
		}
	}

	return plugins, nil
}

// CalculateChecksum computes the SHA256 checksum of a module file.
func CalculateChecksum(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return sha256Hex(data), nil
}

// sha256Hex computes SHA256 hash and returns hex string.
func sha256Hex(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
