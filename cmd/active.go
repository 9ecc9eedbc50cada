package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/grovepm/grove-ledger/pkg/state"
	"github.com/spf13/cobra"
)

func NewSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <directory>",
		Short: "Set the active ledger directory",
		Long: `Set the active ledger directory so other commands can be run without a
directory argument.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := absDir(args[0])
			if err != nil {
				return err
			}
			if err := state.SetActiveLedger(dir); err != nil {
				return fmt.Errorf("set active ledger: %w", err)
			}
			fmt.Printf("%s Active ledger set to %s\n", color.GreenString("✓"), dir)
			return nil
		},
	}
}

func NewActiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "active",
		Short: "Print the active ledger directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			active, err := state.GetActiveLedger()
			if err != nil {
				return err
			}
			if active == "" {
				fmt.Println("No active ledger set")
				return nil
			}
			fmt.Println(active)
			return nil
		},
	}
}

func NewClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear the active ledger pointer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := state.ClearActiveLedger(); err != nil {
				return err
			}
			fmt.Printf("%s Active ledger cleared\n", color.GreenString("✓"))
			return nil
		},
	}
}
