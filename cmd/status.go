package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/grovepm/grove-ledger/pkg/ledger"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

func NewStatusCmd() *cobra.Command {
	var (
		jsonOutput bool
		watch      bool
	)
	cmd := &cobra.Command{
		Use:   "status [directory]",
		Short: "Show the derived status of a ledger",
		Long: `Show the derived view of the ledger: current task and phase, work
completed/in-progress/remaining, and overall status. These fields are
recomputed from the authoritative per-task statuses on every read.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := resolveLedgerDir(args)
			if err != nil {
				return err
			}

			store := openStore(dir)

			if watch && !jsonOutput {
				return runWatch(store)
			}

			led, m, err := store.Load()
			if err != nil {
				return err
			}
			snap := ledger.Derive(led, m)

			if jsonOutput {
				return printJSON(snap)
			}

			printSnapshot(store, led, m, snap)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output status as JSON")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Watch the ledger in a live view")
	return cmd
}

func printSnapshot(store *ledger.Store, led *ledger.Ledger, m *ledger.Manifest, snap ledger.Snapshot) {
	useColor := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	if !useColor {
		color.NoColor = true
	}

	fmt.Printf("Ledger: %s (version %d)\n", store.LedgerPath(), led.Version)
	fmt.Printf("Overall: %s\n", snap.OverallStatus)
	if snap.CurrentPhase != "" {
		fmt.Printf("Phase: %s\n", snap.CurrentPhase)
	}
	if snap.CurrentTask != "" {
		fmt.Printf("Current task: %s\n", color.CyanString(snap.CurrentTask))
	}
	if snap.NextAction != "" {
		fmt.Printf("Next action: %s\n", snap.NextAction)
	}
	fmt.Println()

	order := append(append(append([]string{}, snap.WorkInProgress...), snap.WorkRemaining...), snap.WorkCompleted...)
	for _, id := range order {
		task := led.Tasks[id]
		line := fmt.Sprintf("  %s %s", statusGlyph(task.Status), id)
		if m != nil {
			if def, ok := m.TaskByID(id); ok && def.Title != "" {
				line += ": " + def.Title
			}
		}
		fmt.Printf("%s (%s)\n", line, task.Status)
	}

	fmt.Printf("\n%d completed, %d in progress, %d remaining\n",
		len(snap.WorkCompleted), len(snap.WorkInProgress), len(snap.WorkRemaining))
}
