package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/checkoutkit/internal/app"
)

var checksCmd = &cobra.Command{
	Use:   "checks",
	Short: "List registered completion checks",
	Long: `Checks prints the completion checks steps can reference, both
built-ins and those contributed by plugins.

Examples:
  checkoutkit checks
  checkoutkit checks --plugins ./plugins`,
	RunE: runChecks,
}

var checksPlugins string

func init() {
	rootCmd.AddCommand(checksCmd)

	checksCmd.Flags().StringVar(&checksPlugins, "plugins", "", "Directory holding check plugins")
}

func runChecks(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := app.LoadConfig(configPath())
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("plugins") {
		cfg.PluginsDir = checksPlugins
	}

	kit := app.New(cfg, buildLogger(cfg), os.Stdout)

	names, err := kit.ListChecks(ctx)
	if err != nil {
		return err
	}

	kit.PrintChecks(names)
	return nil
}
