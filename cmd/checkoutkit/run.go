package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/checkoutkit/internal/adapters/logging"
	"github.com/felixgeelhaar/checkoutkit/internal/app"
	"github.com/felixgeelhaar/checkoutkit/internal/ports"
	"github.com/felixgeelhaar/checkoutkit/internal/tui"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the interactive checkout wizard",
	Long: `Run starts the checkout wizard in your terminal.

The wizard walks the numbered steps of the configured flow, gates each
advance behind the step's completion check, and mirrors the active step
into the address fragment.

Examples:
  checkoutkit run
  checkoutkit run --flow shop.yaml --profile shopper.ini
  checkoutkit run --fragment "#step2"
  checkoutkit run --locale de`,
	RunE: runRun,
}

var (
	runFlow      string
	runProfile   string
	runLocale    string
	runPlugins   string
	runFragment  string
	runAnalytics string
	runCoupons   []string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlow, "flow", "f", "", "Path to the flow definition YAML")
	runCmd.Flags().StringVarP(&runProfile, "profile", "p", "", "Shopper profile INI that seeds the session")
	runCmd.Flags().StringVarP(&runLocale, "locale", "l", "", "Locale tag (en, de, es)")
	runCmd.Flags().StringVar(&runPlugins, "plugins", "", "Directory holding check plugins")
	runCmd.Flags().StringVar(&runFragment, "fragment", "", `Initial URL fragment, e.g. "#step2"`)
	runCmd.Flags().StringVar(&runAnalytics, "analytics", "", "JSONL file events append to")
	runCmd.Flags().StringSliceVar(&runCoupons, "coupon", nil, "Coupon code the order accepts (repeatable)")
}

func runRun(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadRunConfig(cmd)
	if err != nil {
		return err
	}

	kit := app.New(cfg, wizardLogger(cfg), os.Stdout)

	assembly, err := kit.Assemble(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = assembly.Close(ctx) }()

	if err := assembly.Session.Start(ctx); err != nil {
		return err
	}

	opts := tui.NewWizardOptions().WithLocation(assembly.Location)
	if assembly.Profile != nil && assembly.Profile.Coupon != "" {
		opts = opts.WithCouponPrefill(assembly.Profile.Coupon)
	}

	result, err := tui.RunWizard(ctx, assembly.Session, assembly.Coupon, assembly.Localizer, opts)
	if err != nil {
		return err
	}

	switch {
	case result.Submitted:
		fmt.Printf("\n✓ Order %s submitted\n", assembly.Session.ID())
	case result.Cancelled:
		fmt.Printf("\nCheckout abandoned at step %d\n", result.StepNumber)
	}

	return nil
}

// loadRunConfig loads the TOML config and applies flag overrides.
func loadRunConfig(cmd *cobra.Command) (app.Config, error) {
	cfg, err := app.LoadConfig(configPath())
	if err != nil {
		return app.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("flow") {
		cfg.Flow = runFlow
	}
	if flags.Changed("profile") {
		cfg.Profile = runProfile
	}
	if flags.Changed("locale") {
		cfg.Locale = runLocale
	}
	if flags.Changed("plugins") {
		cfg.PluginsDir = runPlugins
	}
	if flags.Changed("fragment") {
		cfg.Fragment = runFragment
	}
	if flags.Changed("analytics") {
		cfg.Analytics.File = runAnalytics
	}
	if flags.Changed("coupon") {
		cfg.Coupons = runCoupons
	}
	return cfg, nil
}

// wizardLogger keeps the terminal clean while the wizard owns it: logs
// go to the configured file, or nowhere when none is set.
func wizardLogger(cfg app.Config) ports.Logger {
	if cfg.Log.File != "" || verbose {
		return buildLogger(cfg)
	}
	return logging.NewNopLogger()
}
