package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func NewInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [directory]",
		Short: "Create a progress ledger from the manifest",
		Long: `Create a new progress ledger scaffolded from the plan's manifest.
Every declared task starts as not-started. Fails if a ledger already exists.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			store := openStore(dir)
			led, err := store.Init()
			if err != nil {
				return fmt.Errorf("init ledger: %w", err)
			}

			fmt.Printf("%s Ledger created at %s with %d task(s)\n",
				color.GreenString("✓"), store.LedgerPath(), len(led.Tasks))
			return nil
		},
	}
}
