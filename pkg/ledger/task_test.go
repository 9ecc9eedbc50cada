package ledger

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from Status
		to   Status
		want bool
	}{
		{"start a fresh task", StatusNotStarted, StatusInProgress, true},
		{"skip a fresh task", StatusNotStarted, StatusSkipped, true},
		{"block a fresh task", StatusNotStarted, StatusBlocked, true},
		{"complete without starting", StatusNotStarted, StatusComplete, false},
		{"complete a running task", StatusInProgress, StatusComplete, true},
		{"fail a running task", StatusInProgress, StatusFailed, true},
		{"block a running task", StatusInProgress, StatusBlocked, true},
		{"re-start a running task", StatusInProgress, StatusInProgress, true},
		{"skip a running task", StatusInProgress, StatusSkipped, false},
		{"unblock to in-progress", StatusBlocked, StatusInProgress, true},
		{"unblock to not-started", StatusBlocked, StatusNotStarted, true},
		{"retry a failed task", StatusFailed, StatusInProgress, true},
		{"skip a failed task", StatusFailed, StatusSkipped, true},
		{"reopen a complete task", StatusComplete, StatusNotStarted, false},
		{"restart a complete task", StatusComplete, StatusInProgress, false},
		{"restart a skipped task", StatusSkipped, StatusInProgress, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []Status{StatusNotStarted, StatusInProgress, StatusComplete, StatusFailed, StatusSkipped, StatusBlocked} {
		if !ValidStatus(s) {
			t.Errorf("ValidStatus(%s) = false, want true", s)
		}
	}
	for _, s := range []Status{"", "pending", "done", "in_progress"} {
		if ValidStatus(s) {
			t.Errorf("ValidStatus(%s) = true, want false", s)
		}
	}
}

func TestTaskClone(t *testing.T) {
	original := &Task{
		ID:        "t1",
		Status:    StatusInProgress,
		Decisions: []Decision{{ID: "d1", Description: "pick yaml"}},
		Artifacts: []string{"out.txt"},
	}

	clone := original.Clone()
	clone.Status = StatusComplete
	clone.Decisions = append(clone.Decisions, Decision{ID: "d2", Description: "later"})
	clone.Artifacts[0] = "changed.txt"

	if original.Status != StatusInProgress {
		t.Errorf("clone mutated original status: %s", original.Status)
	}
	if len(original.Decisions) != 1 {
		t.Errorf("clone mutated original decisions: %d", len(original.Decisions))
	}
	if original.Artifacts[0] != "out.txt" {
		t.Errorf("clone shares artifact backing array")
	}
}
