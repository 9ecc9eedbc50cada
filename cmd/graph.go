package cmd

import (
	"fmt"
	"os"

	"github.com/grovepm/grove-ledger/pkg/ledger"
	"github.com/spf13/cobra"
)

func NewGraphCmd() *cobra.Command {
	var (
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "graph [directory]",
		Short: "Render the manifest dependency graph",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := resolveLedgerDir(args)
			if err != nil {
				return err
			}

			store := openStore(dir)
			m, err := store.LoadManifest()
			if err != nil {
				return err
			}

			// Ledger is optional here: the graph renders statuses when one
			// exists and plain not-started nodes otherwise.
			led, lederr := store.LoadLedger()
			if lederr != nil {
				led = nil
			}

			graph, err := ledger.BuildGraph(m)
			if err != nil {
				return err
			}

			var rendered string
			switch format {
			case "mermaid":
				rendered = graph.Mermaid(led)
			case "dot":
				rendered = graph.DOT(led)
			case "ascii":
				rendered = graph.ASCII(led)
			default:
				return fmt.Errorf("invalid format %q: use mermaid, dot, or ascii", format)
			}

			if output != "" {
				if err := os.WriteFile(output, []byte(rendered), 0644); err != nil {
					return fmt.Errorf("write output file: %w", err)
				}
				fmt.Printf("Graph written to %s\n", output)
				return nil
			}
			fmt.Println(rendered)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "mermaid", "Output format: mermaid, dot, ascii")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (stdout if not specified)")
	return cmd
}
