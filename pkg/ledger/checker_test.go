package ledger

import "testing"

func violationsFor(violations []Violation, invariant int) []Violation {
	var matched []Violation
	for _, v := range violations {
		if v.Invariant == invariant {
			matched = append(matched, v)
		}
	}
	return matched
}

func TestValidateCleanLedger(t *testing.T) {
	m := mustManifest(t, sampleManifest)
	led := NewFromManifest(m)

	now := timestamp(t, "2026-01-02T10:00:00Z")
	led.Tasks["scaffold"].Status = StatusComplete
	led.Tasks["scaffold"].CompletedAt = &now
	led.Tasks["api"].Status = StatusInProgress
	led.Tasks["api"].StartedAt = &now
	led.CurrentTask = "api"
	led.NextAction = &NextAction{Task: "api", Note: "wire the handlers"}

	if violations := Validate(led, m); len(violations) != 0 {
		t.Fatalf("expected no violations, got %v", violations)
	}
}

func TestValidateInvariant1(t *testing.T) {
	m := mustManifest(t, sampleManifest)
	led := NewFromManifest(m)
	now := timestamp(t, "2026-01-02T10:00:00Z")
	led.Tasks["scaffold"].Status = StatusComplete
	led.Tasks["scaffold"].CompletedAt = &now
	led.Tasks["api"].Status = StatusInProgress
	led.Tasks["storage"].Status = StatusInProgress
	led.CurrentTask = "api"
	led.NextAction = &NextAction{Task: "api"}

	matched := violationsFor(Validate(led, m), 1)
	if len(matched) != 1 {
		t.Fatalf("expected one invariant 1 violation, got %v", matched)
	}
	if len(matched[0].TaskIDs) != 2 {
		t.Errorf("violation should name both tasks: %v", matched[0])
	}
}

func TestValidateInvariant2(t *testing.T) {
	led := NewLedger()
	led.Tasks["t1"] = &Task{ID: "t1", Status: StatusNotStarted}
	led.CurrentTask = "t1"
	led.NextAction = &NextAction{Task: "t1"}

	if matched := violationsFor(Validate(led, nil), 2); len(matched) != 1 {
		t.Fatalf("expected invariant 2 violation for non-running current task, got %v", matched)
	}

	led.CurrentTask = "ghost"
	led.NextAction = &NextAction{Task: "ghost"}
	if matched := violationsFor(Validate(led, nil), 2); len(matched) != 1 {
		t.Fatalf("expected invariant 2 violation for unknown current task, got %v", matched)
	}
}

func TestValidateInvariant3(t *testing.T) {
	led := NewLedger()
	led.Tasks["t1"] = &Task{ID: "t1", Status: StatusInProgress}
	led.Tasks["t2"] = &Task{ID: "t2", Status: StatusNotStarted}
	led.CurrentTask = "t1"

	if matched := violationsFor(Validate(led, nil), 3); len(matched) != 1 {
		t.Fatalf("expected invariant 3 violation for missing next_action, got %v", matched)
	}

	led.NextAction = &NextAction{Task: "t2", Note: "work on t2"}
	if matched := violationsFor(Validate(led, nil), 3); len(matched) != 1 {
		t.Fatalf("expected invariant 3 violation for mismatched next_action, got %v", matched)
	}

	led.NextAction = &NextAction{Task: "t1"}
	if matched := violationsFor(Validate(led, nil), 3); len(matched) != 0 {
		t.Fatalf("expected no invariant 3 violation, got %v", matched)
	}
}

func TestValidateInvariant4(t *testing.T) {
	led := NewLedger()
	led.Tasks["t1"] = &Task{ID: "t1", Status: StatusComplete}

	matched := violationsFor(Validate(led, nil), 4)
	if len(matched) != 1 {
		t.Fatalf("expected invariant 4 violation for missing timestamp, got %v", matched)
	}

	now := timestamp(t, "2026-01-02T10:00:00Z")
	led.Tasks["t1"].CompletedAt = &now
	if matched := violationsFor(Validate(led, nil), 4); len(matched) != 0 {
		t.Fatalf("expected no invariant 4 violation, got %v", matched)
	}
}

func TestValidateInvariant5(t *testing.T) {
	m := mustManifest(t, `
groups:
  - name: main
    tasks:
      - id: t1
      - id: t2
        depends_on: [t1]
`)
	led := NewFromManifest(m)
	led.Tasks["t2"].Status = StatusInProgress
	led.CurrentTask = "t2"
	led.NextAction = &NextAction{Task: "t2"}

	matched := violationsFor(Validate(led, m), 5)
	if len(matched) != 1 {
		t.Fatalf("expected invariant 5 violation, got %v", matched)
	}

	// Without a manifest the dependency invariant cannot be checked.
	if matched := violationsFor(Validate(led, nil), 5); len(matched) != 0 {
		t.Fatalf("expected no invariant 5 violation without manifest, got %v", matched)
	}
}

func TestValidateInvariant6(t *testing.T) {
	now := timestamp(t, "2026-01-02T10:00:00Z")
	led := NewLedger()
	led.Tasks["t1"] = &Task{ID: "t1", Status: StatusComplete, CompletedAt: &now}
	led.Tasks["t2"] = &Task{ID: "t2", Status: StatusNotStarted}

	// Stored views drifted: t2 claimed complete, t1 missing entirely.
	led.WorkCompleted = []string{"t2"}
	led.WorkRemaining = []string{}

	matched := violationsFor(Validate(led, nil), 6)
	if len(matched) < 2 {
		t.Fatalf("expected violations for misplacement and omission, got %v", matched)
	}

	// Correct partition passes.
	led.WorkCompleted = []string{"t1"}
	led.WorkRemaining = []string{"t2"}
	if matched := violationsFor(Validate(led, nil), 6); len(matched) != 0 {
		t.Fatalf("expected no invariant 6 violation, got %v", matched)
	}

	// A task in two views fails.
	led.WorkRemaining = []string{"t1", "t2"}
	if matched := violationsFor(Validate(led, nil), 6); len(matched) == 0 {
		t.Fatal("expected invariant 6 violation for duplicated task")
	}
}

func TestValidateInvariant7(t *testing.T) {
	now := timestamp(t, "2026-01-02T10:00:00Z")
	led := NewLedger()
	led.Tasks["t1"] = &Task{ID: "t1", Status: StatusComplete, CompletedAt: &now}
	led.OverallStatus = OverallInProgress

	if matched := violationsFor(Validate(led, nil), 7); len(matched) != 1 {
		t.Fatalf("expected invariant 7 violation for stale overall status, got %v", matched)
	}

	led.Tasks["t2"] = &Task{ID: "t2", Status: StatusNotStarted}
	led.OverallStatus = OverallComplete
	if matched := violationsFor(Validate(led, nil), 7); len(matched) != 1 {
		t.Fatalf("expected invariant 7 violation for premature complete, got %v", matched)
	}
}

func TestOrphanedTasks(t *testing.T) {
	m := mustManifest(t, `
groups:
  - name: main
    tasks:
      - id: t1
`)
	led := NewFromManifest(m)
	led.Tasks["zombie"] = &Task{ID: "zombie", Status: StatusNotStarted}

	orphans := OrphanedTasks(led, m)
	if len(orphans) != 1 || orphans[0] != "zombie" {
		t.Errorf("OrphanedTasks = %v, want [zombie]", orphans)
	}

	if violations := Validate(led, m); len(violations) != 0 {
		t.Errorf("orphans must not be invariant violations, got %v", violations)
	}
}
