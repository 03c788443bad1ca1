package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter flow and configuration",
	Long: `Init writes a starter checkout.yaml and checkoutkit.toml into the
target directory. Existing files are left alone unless --force is set.

Examples:
  checkoutkit init
  checkoutkit init --dir ./shop --force`,
	RunE: runInit,
}

var (
	initDir   string
	initForce bool
)

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVarP(&initDir, "dir", "d", ".", "Target directory")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing files")
}

const starterFlow = `steps:
  - id: order-summary
    title: Order Summary
    numbered: false
    check: always
    content:
      active: Review the items in your cart.
      complete: Cart locked in.

  - id: contact
    title: Contact Details
    check: email-filled
    editable: true
    content:
      active: Enter the email address for order updates.
      incomplete: Email address required.
      complete: We will send order updates to your email.

  - id: shipping
    title: Shipping Address
    check: field-filled:street
    editable: true
    edit_label: Change address
    content:
      active: Where should we send the order?
      incomplete: Shipping address required.

  - id: payment
    title: Payment Method
    check: payment-method-selected
    editable: true
    content:
      active: Pick how you want to pay.
      incomplete: Payment method required.

  - id: review
    title: Review Order
    check: always
    content:
      active: Make sure everything looks right before placing the order.
`

const starterConfig = `flow = "checkout.yaml"
locale = "en"
coupons = ["SAVE10", "WELCOME"]

# profile = "shopper.ini"
# plugins_dir = "plugins"
# fragment = "#step1"

[log]
level = "info"
format = "text"
# file = "checkoutkit.log"

[analytics]
# file = "events.jsonl"
`

func runInit(_ *cobra.Command, _ []string) error {
	files := map[string]string{
		"checkout.yaml":    starterFlow,
		"checkoutkit.toml": starterConfig,
	}

	for name, content := range files {
		path := filepath.Join(initDir, name)
		if !initForce {
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		fmt.Printf("✓ wrote %s\n", path)
	}

	fmt.Println("\nNext: checkoutkit run")
	return nil
}
