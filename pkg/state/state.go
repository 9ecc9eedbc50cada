package state

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// State represents the local tool state.
type State struct {
	ActiveLedger string `yaml:"active_ledger,omitempty"`
}

// stateFilePath returns the path to the state file.
func stateFilePath() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get current directory: %w", err)
	}

	// Walk up the directory tree looking for .git
	dir := cwd
	for {
		gitPath := filepath.Join(dir, ".git")
		if _, err := os.Stat(gitPath); err == nil {
			return filepath.Join(dir, ".grove", "state.yml"), nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root without finding .git, fall back to cwd
			return filepath.Join(cwd, ".grove", "state.yml"), nil
		}
		dir = parent
	}
}

// LoadState loads the state from the state file.
func LoadState() (*State, error) {
	path, err := stateFilePath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &State{}, nil
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}

	var state State
	if err := yaml.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parse state file: %w", err)
	}

	return &state, nil
}

// SaveState saves the state to the state file.
func SaveState(state *State) error {
	path, err := stateFilePath()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	data, err := yaml.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}

	return nil
}

// GetActiveLedger returns the active ledger directory from the state.
func GetActiveLedger() (string, error) {
	state, err := LoadState()
	if err != nil {
		return "", err
	}
	return state.ActiveLedger, nil
}

// SetActiveLedger sets the active ledger directory in the state.
func SetActiveLedger(dir string) error {
	state, err := LoadState()
	if err != nil {
		return err
	}

	state.ActiveLedger = dir
	return SaveState(state)
}

// ClearActiveLedger clears the active ledger from the state.
func ClearActiveLedger() error {
	state, err := LoadState()
	if err != nil {
		return err
	}

	state.ActiveLedger = ""
	return SaveState(state)
}
