// Package app provides the application facade that assembles a checkout
// from its configuration: flow definition, completion checks, plugins,
// analytics, localization, and the session itself.
package app

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/felixgeelhaar/checkoutkit/internal/ports"
)

// LogConfig controls log output.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`
	// Format is text or json.
	Format string `toml:"format"`
	// File receives log output instead of stderr. The wizard discards
	// logs when no file is set, since it owns the terminal.
	File string `toml:"file"`
}

// AnalyticsConfig controls event recording.
type AnalyticsConfig struct {
	// File is the JSONL path events append to. Empty disables recording.
	File string `toml:"file"`
}

// Config is the application configuration (checkoutkit.toml).
type Config struct {
	// Flow is the path to the flow definition YAML.
	Flow string `toml:"flow"`
	// Profile is an optional shopper profile INI that seeds the session.
	Profile string `toml:"profile"`
	// Locale is a BCP 47 tag such as "en", "de", or "es".
	Locale string `toml:"locale"`
	// PluginsDir holds check plugins, one directory per plugin.
	PluginsDir string `toml:"plugins_dir"`
	// Fragment is the initial URL fragment, e.g. "#step2".
	Fragment string `toml:"fragment"`
	// Coupons lists the codes the built-in coupon validator accepts.
	Coupons []string `toml:"coupons"`

	Log       LogConfig       `toml:"log"`
	Analytics AnalyticsConfig `toml:"analytics"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		Flow:   "checkout.yaml",
		Locale: "en",
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig reads a TOML configuration file. A missing file yields the
// defaults; a malformed one is an error.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LogLevel maps the configured level name to a logger level. Unknown
// names fall back to info.
func (c Config) LogLevel() ports.Level {
	switch c.Log.Level {
	case "debug":
		return ports.LevelDebug
	case "warn":
		return ports.LevelWarn
	case "error":
		return ports.LevelError
	default:
		return ports.LevelInfo
	}
}

// JSONLogs reports whether log output should be JSON.
func (c Config) JSONLogs() bool {
	return c.Log.Format == "json"
}
