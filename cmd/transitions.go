package cmd

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/grovepm/grove-ledger/pkg/ledger"
	"github.com/spf13/cobra"
)

// Transition commands share one shape: resolve the plan directory, apply the
// status change, report. Invariant violations reject the write entirely.

var startNote string

func NewStartCmd() *cobra.Command {
	cmd := newTransitionCmd("start", "Mark a task in-progress and make it current", ledger.StatusInProgress)
	cmd.Long = `Mark a task in-progress. The task becomes the current task and the
next-action pointer is set to it. Fails if another task is already in
progress (invariant 1), or if the task's manifest dependencies are not yet
complete or skipped (invariant 5).`
	cmd.Flags().StringVarP(&startNote, "note", "n", "", "Next-action note for the resumed session")
	return cmd
}

func NewCompleteCmd() *cobra.Command {
	cmd := newTransitionCmd("complete", "Mark a task complete with a completion timestamp", ledger.StatusComplete)
	return cmd
}

func NewFailCmd() *cobra.Command {
	return newTransitionCmd("fail", "Mark a task failed", ledger.StatusFailed)
}

func NewSkipCmd() *cobra.Command {
	return newTransitionCmd("skip", "Mark a task skipped", ledger.StatusSkipped)
}

func NewBlockCmd() *cobra.Command {
	return newTransitionCmd("block", "Mark a task blocked", ledger.StatusBlocked)
}

func newTransitionCmd(use, short string, target ledger.Status) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   use + " <task-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID := args[0]
			planDir, err := resolveLedgerDir([]string{dir})
			if err != nil {
				return err
			}

			store := openStore(planDir)
			led, err := store.SetStatus(taskID, target, time.Now())
			if err != nil {
				return reportWriteError(err)
			}

			if target == ledger.StatusInProgress && startNote != "" {
				if led, err = store.SetNextActionNote(startNote); err != nil {
					return reportWriteError(err)
				}
			}

			task := led.Tasks[taskID]
			fmt.Printf("%s Task %s is now %s\n", statusGlyph(task.Status), color.CyanString(taskID), task.Status)
			if led.NextAction != nil {
				fmt.Printf("  Next action: %s\n", led.NextAction.Render())
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Plan directory (defaults to the active ledger)")
	return cmd
}

func NewResetCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "reset <task-id>",
		Short: "Return a task to not-started",
		Long: `Return a task to not-started, clearing its timestamps. This is the only
way out of a terminal status (complete or skipped). Recorded decisions are
history and are kept.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID := args[0]
			planDir, err := resolveLedgerDir([]string{dir})
			if err != nil {
				return err
			}

			store := openStore(planDir)
			if _, err := store.Reset(taskID, time.Now()); err != nil {
				return reportWriteError(err)
			}

			fmt.Printf("%s Task %s reset to %s\n", color.GreenString("✓"), color.CyanString(taskID), ledger.StatusNotStarted)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Plan directory (defaults to the active ledger)")
	return cmd
}
