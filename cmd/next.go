package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/grovepm/grove-ledger/pkg/ledger"
	"github.com/spf13/cobra"
)

func NewNextCmd() *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "next [directory]",
		Short: "List tasks eligible to start",
		Long: `List the tasks whose dependencies are all complete or skipped and that
are themselves not-started or blocked. Tasks in a parallel group may be
started concurrently; the resolver only answers the question, it starts
nothing.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := resolveLedgerDir(args)
			if err != nil {
				return err
			}

			store := openStore(dir)
			led, m, err := store.Load()
			if err != nil {
				return err
			}
			if m == nil {
				return fmt.Errorf("no manifest at %s", store.ManifestPath())
			}

			groups := ledger.EligibleByGroup(m, led)

			if jsonOutput {
				return printJSON(groups)
			}

			if len(groups) == 0 {
				snap := ledger.Derive(led, m)
				if snap.OverallStatus == ledger.OverallComplete {
					fmt.Printf("%s All tasks are complete or skipped\n", color.GreenString("✓"))
				} else {
					fmt.Println("No tasks are eligible to start right now")
				}
				return nil
			}

			for _, group := range groups {
				header := group.Name
				if group.Parallel {
					header += color.YellowString(" (parallel)")
				}
				fmt.Printf("%s:\n", header)
				for _, id := range group.Tasks {
					line := "  " + color.CyanString(id)
					if def, ok := m.TaskByID(id); ok && def.Title != "" {
						line += ": " + def.Title
					}
					fmt.Println(line)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output eligible tasks as JSON")
	return cmd
}
