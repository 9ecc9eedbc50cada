package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/grovepm/grove-ledger/pkg/ledger"
	"github.com/grovepm/grove-ledger/pkg/state"
)

// resolveLedgerDir resolves the plan directory from an optional argument,
// falling back to the active ledger pointer.
func resolveLedgerDir(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}

	active, err := state.GetActiveLedger()
	if err != nil {
		return "", fmt.Errorf("get active ledger: %w", err)
	}
	if active == "" {
		return "", fmt.Errorf("no plan directory specified and no active ledger set (use 'ledger set <directory>' to set one)")
	}
	return active, nil
}

// openStore builds a store for a directory, applying configured file names.
func openStore(dir string) *ledger.Store {
	store := ledger.NewStore(dir)
	if cfg != nil {
		if cfg.LedgerFile != "" {
			store.LedgerFile = cfg.LedgerFile
		}
		if cfg.ManifestFile != "" {
			store.ManifestFile = cfg.ManifestFile
		}
	}
	return store
}

// statusGlyph returns a colored marker for a task status.
func statusGlyph(s ledger.Status) string {
	switch s {
	case ledger.StatusComplete:
		return color.GreenString("✓")
	case ledger.StatusInProgress:
		return color.YellowString("⚡")
	case ledger.StatusFailed:
		return color.RedString("✗")
	case ledger.StatusBlocked:
		return color.MagentaString("■")
	case ledger.StatusSkipped:
		return color.CyanString("~")
	default:
		return color.WhiteString("·")
	}
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling to JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// reportWriteError prints violation details for rejected writes before the
// error propagates.
func reportWriteError(err error) error {
	var consistency ledger.ConsistencyError
	if errors.As(err, &consistency) {
		fmt.Printf("%s Write rejected, the ledger would become inconsistent:\n", color.RedString("✗"))
		for _, v := range consistency.Violations {
			fmt.Printf("  - %s\n", v)
		}
		return fmt.Errorf("%d invariant violation(s)", len(consistency.Violations))
	}
	return err
}

// absDir normalizes a plan directory for the active-ledger pointer.
func absDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve path %s: %w", dir, err)
	}
	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", abs)
	}
	return abs, nil
}
