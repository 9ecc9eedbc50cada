package ledger

import (
	"errors"
	"strings"
	"testing"
)

const sampleManifest = `
groups:
  - name: setup
    tasks:
      - id: scaffold
        title: Scaffold the project
  - name: build
    parallel: true
    tasks:
      - id: api
        title: Implement the API
        depends_on: [scaffold]
      - id: storage
        title: Implement the storage layer
        depends_on: [scaffold]
  - name: finish
    tasks:
      - id: integration
        depends_on: [api, storage]
        files: [docs/integration.md]
`

func TestParseManifest(t *testing.T) {
	m, err := ParseManifest([]byte(sampleManifest))
	if err != nil {
		t.Fatalf("ParseManifest failed: %v", err)
	}

	if len(m.Groups) != 3 {
		t.Errorf("expected 3 groups, got %d", len(m.Groups))
	}

	wantOrder := []string{"scaffold", "api", "storage", "integration"}
	got := m.Order()
	if len(got) != len(wantOrder) {
		t.Fatalf("expected %d tasks, got %d", len(wantOrder), len(got))
	}
	for i, id := range wantOrder {
		if got[i] != id {
			t.Errorf("order[%d] = %s, want %s", i, got[i], id)
		}
	}

	if group, _ := m.GroupOf("api"); group != "build" {
		t.Errorf("GroupOf(api) = %s, want build", group)
	}

	def, ok := m.TaskByID("integration")
	if !ok {
		t.Fatal("TaskByID(integration) not found")
	}
	if len(def.DependsOn) != 2 {
		t.Errorf("integration should have 2 dependencies, got %d", len(def.DependsOn))
	}
}

func TestParseManifestErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		errText string
	}{
		{
			name: "duplicate task id",
			yaml: `
groups:
  - name: a
    tasks:
      - id: t1
  - name: b
    tasks:
      - id: t1
`,
			errText: "duplicate task id",
		},
		{
			name: "missing id",
			yaml: `
groups:
  - name: a
    tasks:
      - title: no id here
`,
			errText: "validating manifest",
		},
		{
			name: "missing group name",
			yaml: `
groups:
  - tasks:
      - id: t1
`,
			errText: "validating manifest",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseManifest([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.errText) {
				t.Errorf("error %q does not contain %q", err, tt.errText)
			}
		})
	}
}

func TestParseManifestMissingDependency(t *testing.T) {
	yaml := `
groups:
  - name: a
    tasks:
      - id: t1
        depends_on: [nope]
`
	_, err := ParseManifest([]byte(yaml))
	var missing MissingDependencyError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingDependencyError, got %v", err)
	}
	if missing.TaskID != "t1" || missing.DependsOn != "nope" {
		t.Errorf("unexpected error detail: %+v", missing)
	}
}

func TestParseManifestCycle(t *testing.T) {
	yaml := `
groups:
  - name: a
    tasks:
      - id: t1
        depends_on: [t2]
      - id: t2
        depends_on: [t3]
      - id: t3
        depends_on: [t1]
`
	_, err := ParseManifest([]byte(yaml))
	var cyclic CyclicDependencyError
	if !errors.As(err, &cyclic) {
		t.Fatalf("expected CyclicDependencyError, got %v", err)
	}
	if len(cyclic.Cycle) < 3 {
		t.Errorf("cycle path too short: %v", cyclic.Cycle)
	}
}

func TestParseManifestSelfDependency(t *testing.T) {
	yaml := `
groups:
  - name: a
    tasks:
      - id: t1
        depends_on: [t1]
`
	_, err := ParseManifest([]byte(yaml))
	var cyclic CyclicDependencyError
	if !errors.As(err, &cyclic) {
		t.Fatalf("expected CyclicDependencyError for self-dependency, got %v", err)
	}
}
