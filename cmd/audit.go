package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/grovepm/grove-ledger/pkg/ledger"
	"github.com/spf13/cobra"
)

type auditReport struct {
	Violations []ledger.Violation `json:"violations"`
	Orphans    []string           `json:"orphans,omitempty"`
}

func NewAuditCmd() *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "audit [directory]",
		Short: "Check an existing ledger against the invariants",
		Long: `Validate a ledger file against the full invariant set. This is the
offensive counterpart to the check every write performs: it catches
hand-edited ledgers that drifted out of sync. Ledger tasks the manifest no
longer declares are reported as orphans, not violations.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := resolveLedgerDir(args)
			if err != nil {
				return err
			}

			// Audit the file as it stands, without reconciling manifest
			// additions into it: the stored work views must match what is
			// actually on disk.
			store := openStore(dir)
			led, err := store.LoadLedger()
			if err != nil {
				return err
			}
			m, err := store.LoadManifestIfPresent()
			if err != nil {
				return err
			}

			report := auditReport{
				Violations: ledger.Validate(led, m),
				Orphans:    ledger.OrphanedTasks(led, m),
			}

			if jsonOutput {
				if err := printJSON(report); err != nil {
					return err
				}
			} else {
				for _, v := range report.Violations {
					fmt.Printf("%s %s\n", color.RedString("✗"), v)
				}
				for _, id := range report.Orphans {
					fmt.Printf("%s task %s is not declared by the manifest\n", color.YellowString("⚠"), id)
				}
				if len(report.Violations) == 0 {
					fmt.Printf("%s Ledger is consistent (%d task(s))\n", color.GreenString("✓"), len(led.Tasks))
				}
			}

			if len(report.Violations) > 0 {
				return fmt.Errorf("%d invariant violation(s)", len(report.Violations))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the audit report as JSON")
	return cmd
}
