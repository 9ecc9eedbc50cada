package cmd

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func NewDecisionCmd() *cobra.Command {
	var (
		dir       string
		rationale string
	)
	cmd := &cobra.Command{
		Use:   "decision [task-id] <description>",
		Short: "Record an immutable decision on a task",
		Long: `Append a decision record to a task. With a single argument the decision is
attached to the task currently in progress.

Examples:
  # Attach to the current task
  ledger decision "Chose YAML over JSON for the export format" -r "diff-friendly"

  # Attach to a specific task
  ledger decision setup-db "Using connection pooling" -r "write bursts"`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var taskID, description string
			if len(args) == 2 {
				taskID, description = args[0], args[1]
			} else {
				description = args[0]
			}

			planDir, err := resolveLedgerDir([]string{dir})
			if err != nil {
				return err
			}

			store := openStore(planDir)
			led, err := store.RecordDecision(taskID, description, rationale, time.Now())
			if err != nil {
				return reportWriteError(err)
			}

			if taskID == "" {
				taskID = led.CurrentTask
			}
			task := led.Tasks[taskID]
			decision := task.Decisions[len(task.Decisions)-1]
			fmt.Printf("%s Decision %s recorded on task %s\n",
				color.GreenString("✓"), decision.ID, color.CyanString(taskID))
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Plan directory (defaults to the active ledger)")
	cmd.Flags().StringVarP(&rationale, "rationale", "r", "", "Why the decision was made")
	return cmd
}

func NewArtifactCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "artifact <task-id> <reference>",
		Short: "Record a produced-artifact reference on a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			planDir, err := resolveLedgerDir([]string{dir})
			if err != nil {
				return err
			}

			store := openStore(planDir)
			if _, err := store.AddArtifact(args[0], args[1], time.Now()); err != nil {
				return reportWriteError(err)
			}

			fmt.Printf("%s Artifact recorded on task %s\n", color.GreenString("✓"), color.CyanString(args[0]))
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Plan directory (defaults to the active ledger)")
	return cmd
}

func NewNoteCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "note <text>",
		Short: "Set the next-action note for the current task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			planDir, err := resolveLedgerDir([]string{dir})
			if err != nil {
				return err
			}

			store := openStore(planDir)
			led, err := store.SetNextActionNote(args[0])
			if err != nil {
				return reportWriteError(err)
			}

			fmt.Printf("%s Next action: %s\n", color.GreenString("✓"), led.NextAction.Render())
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Plan directory (defaults to the active ledger)")
	return cmd
}
