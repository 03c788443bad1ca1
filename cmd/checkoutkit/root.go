package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/checkoutkit/internal/adapters/logging"
	"github.com/felixgeelhaar/checkoutkit/internal/app"
	"github.com/felixgeelhaar/checkoutkit/internal/domain/flowdef"
	"github.com/felixgeelhaar/checkoutkit/internal/ports"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "checkoutkit",
	Short: "A multi-step checkout wizard",
	Long: `Checkoutkit runs a multi-step checkout flow in your terminal.

It loads a flow definition, gates each step behind a completion check,
and keeps the address fragment in sync with the active step:
  Flow → Annotate → Run → Submit`,
	SilenceErrors: true, // We handle error formatting ourselves
	SilenceUsage:  true, // Don't show usage on error
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printError(err)
	}
	return err
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: checkoutkit.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Register flag completions
	registerFlagCompletions()

	rootCmd.AddCommand(versionCmd)
}

// configPath returns the configuration file to load.
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return "checkoutkit.toml"
}

// buildLogger creates a console logger per config, raised to debug when
// --verbose is set.
func buildLogger(cfg app.Config) ports.Logger {
	level := cfg.LogLevel()
	if verbose {
		level = ports.LevelDebug
	}
	opts := []logging.ConsoleLoggerOption{
		logging.WithLevel(level),
		logging.WithJSONFormat(cfg.JSONLogs()),
	}
	if cfg.Log.File != "" {
		if f, err := os.OpenFile(cfg.Log.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644); err == nil {
			opts = append(opts, logging.WithOutput(f))
		}
	}
	return logging.NewConsoleLogger(opts...)
}

// formatError returns a user-friendly error message.
// With verbose=false: shows only the user message and suggestion.
// With verbose=true: also shows the underlying technical error.
func formatError(err error) string {
	var defErr *flowdef.DefError
	if errors.As(err, &defErr) {
		msg := defErr.Message
		if defErr.Context != "" {
			msg += fmt.Sprintf(" (at %s)", defErr.Context)
		}
		if defErr.Suggestion != "" {
			msg += fmt.Sprintf("\n\nSuggestion: %s", defErr.Suggestion)
		}
		if verbose && defErr.Underlying != nil {
			msg += fmt.Sprintf("\n\nTechnical details: %v", defErr.Underlying)
		}
		return msg
	}
	return err.Error()
}

// printError prints an error message to stderr with proper formatting.
func printError(err error) {
	printErrorTo(os.Stderr, err)
}

// printErrorTo prints an error message to the given writer.
func printErrorTo(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "Error: %s\n", formatError(err))
}

// registerFlagCompletions sets up custom completions for global flags.
func registerFlagCompletions() {
	// Complete --config with TOML files
	_ = rootCmd.RegisterFlagCompletionFunc("config", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"toml"}, cobra.ShellCompDirectiveFilterFileExt
	})
}
