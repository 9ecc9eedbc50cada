package cmd

import (
	"github.com/fatih/color"
	"github.com/grovepm/grove-ledger/pkg/config"
	"github.com/grovepm/grove-ledger/pkg/ledger"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// cfg is loaded once per invocation by the root command.
var cfg *config.Config

// NewRootCmd builds the ledger CLI.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Progress ledger and manifest tooling for long-running plans",
		Long: `ledger validates and writes the progress ledger (progress.yaml) used by
long-running agent plans, and reads the execution manifest (manifest.yaml)
that declares task groups and their dependencies.

The ledger is the authoritative record of per-task status. Everything else
(current task, current phase, work arrays, overall status) is derived from
it on every read, and every write is checked against the ledger invariants
before it is persisted.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load()
			if err != nil {
				return err
			}
			cfg = c

			level, err := logrus.ParseLevel(c.LogLevel)
			if err != nil {
				level = logrus.WarnLevel
			}
			ledger.SetLogLevel(level)

			if !c.Color {
				color.NoColor = true
			}
			return nil
		},
	}

	rootCmd.AddCommand(
		NewInitCmd(),
		NewStatusCmd(),
		NewStartCmd(),
		NewCompleteCmd(),
		NewFailCmd(),
		NewSkipCmd(),
		NewBlockCmd(),
		NewResetCmd(),
		NewDecisionCmd(),
		NewArtifactCmd(),
		NewNoteCmd(),
		NewNextCmd(),
		NewAuditCmd(),
		NewGraphCmd(),
		NewSchemaCmd(),
		NewSetCmd(),
		NewActiveCmd(),
		NewClearCmd(),
		NewVersionCmd(),
	)

	return rootCmd
}
