package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/checkoutkit/internal/app"
	"github.com/felixgeelhaar/checkoutkit/internal/domain/stepper"
)

var stepsCmd = &cobra.Command{
	Use:   "steps",
	Short: "List the steps of the configured flow",
	Long: `Steps loads the flow definition and prints each step with its
number. Non-numbered steps render without one.

Examples:
  checkoutkit steps
  checkoutkit steps --flow shop.yaml
  checkoutkit steps --json`,
	RunE: runSteps,
}

var (
	stepsFlow    string
	stepsPlugins string
	stepsJSON    bool
)

func init() {
	rootCmd.AddCommand(stepsCmd)

	stepsCmd.Flags().StringVarP(&stepsFlow, "flow", "f", "", "Path to the flow definition YAML")
	stepsCmd.Flags().StringVar(&stepsPlugins, "plugins", "", "Directory holding check plugins")
	stepsCmd.Flags().BoolVar(&stepsJSON, "json", false, "Output steps as JSON")
}

func runSteps(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := app.LoadConfig(configPath())
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("flow") {
		cfg.Flow = stepsFlow
	}
	if cmd.Flags().Changed("plugins") {
		cfg.PluginsDir = stepsPlugins
	}

	kit := app.New(cfg, buildLogger(cfg), os.Stdout)

	steps, err := kit.ListSteps(ctx)
	if err != nil {
		return err
	}

	if stepsJSON {
		return outputStepsJSON(steps)
	}
	kit.PrintSteps(steps)
	return nil
}

func outputStepsJSON(steps []stepper.Annotated) error {
	type stepOut struct {
		ID       string `json:"id"`
		Title    string `json:"title,omitempty"`
		Numbered bool   `json:"numbered"`
		Number   int    `json:"number,omitempty"`
	}

	out := make([]stepOut, 0, len(steps))
	for _, step := range steps {
		out = append(out, stepOut{
			ID:       step.ID.String(),
			Title:    step.Title,
			Numbered: step.HasNumber(),
			Number:   step.Number,
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
