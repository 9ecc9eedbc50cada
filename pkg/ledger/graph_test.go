package ledger

import (
	"strings"
	"testing"
	"time"
)

func mustManifest(t *testing.T, yaml string) *Manifest {
	t.Helper()
	m, err := ParseManifest([]byte(yaml))
	if err != nil {
		t.Fatalf("parse manifest: %v", err)
	}
	return m
}

func timestamp(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse timestamp %s: %v", value, err)
	}
	return ts
}

func TestBuildGraph(t *testing.T) {
	m := mustManifest(t, sampleManifest)

	graph, err := BuildGraph(m)
	if err != nil {
		t.Fatalf("BuildGraph failed: %v", err)
	}

	if len(graph.nodes) != 4 {
		t.Errorf("expected 4 nodes, got %d", len(graph.nodes))
	}
	if len(graph.edges["integration"]) != 2 {
		t.Errorf("expected integration to have 2 dependencies, got %d", len(graph.edges["integration"]))
	}
}

func TestGraphStages(t *testing.T) {
	m := mustManifest(t, sampleManifest)
	graph, err := BuildGraph(m)
	if err != nil {
		t.Fatalf("BuildGraph failed: %v", err)
	}

	stages, err := graph.Stages(nil)
	if err != nil {
		t.Fatalf("Stages failed: %v", err)
	}

	want := [][]string{
		{"scaffold"},
		{"api", "storage"},
		{"integration"},
	}
	if len(stages) != len(want) {
		t.Fatalf("expected %d stages, got %d: %v", len(want), len(stages), stages)
	}
	for i := range want {
		if len(stages[i]) != len(want[i]) {
			t.Errorf("stage %d = %v, want %v", i, stages[i], want[i])
			continue
		}
		for j := range want[i] {
			if stages[i][j] != want[i][j] {
				t.Errorf("stage %d = %v, want %v", i, stages[i], want[i])
			}
		}
	}
}

func TestGraphStagesSkipsTerminalTasks(t *testing.T) {
	m := mustManifest(t, sampleManifest)
	graph, err := BuildGraph(m)
	if err != nil {
		t.Fatalf("BuildGraph failed: %v", err)
	}

	led := NewFromManifest(m)
	led.Tasks["scaffold"].Status = StatusComplete
	led.Tasks["api"].Status = StatusSkipped

	stages, err := graph.Stages(led)
	if err != nil {
		t.Fatalf("Stages failed: %v", err)
	}

	if len(stages) != 2 {
		t.Fatalf("expected 2 stages, got %d: %v", len(stages), stages)
	}
	if stages[0][0] != "storage" {
		t.Errorf("first stage = %v, want [storage]", stages[0])
	}
	if stages[1][0] != "integration" {
		t.Errorf("second stage = %v, want [integration]", stages[1])
	}
}

func TestGraphMermaid(t *testing.T) {
	m := mustManifest(t, sampleManifest)
	graph, err := BuildGraph(m)
	if err != nil {
		t.Fatalf("BuildGraph failed: %v", err)
	}

	led := NewFromManifest(m)
	led.Tasks["scaffold"].Status = StatusComplete

	out := graph.Mermaid(led)
	if !strings.HasPrefix(out, "graph TD") {
		t.Errorf("mermaid output missing header: %q", out[:20])
	}
	if !strings.Contains(out, "scaffold --> api") {
		t.Errorf("mermaid output missing edge:\n%s", out)
	}
	if !strings.Contains(out, `scaffold["scaffold (complete)"]`) {
		t.Errorf("mermaid output missing status label:\n%s", out)
	}
}

func TestGraphDOT(t *testing.T) {
	m := mustManifest(t, sampleManifest)
	graph, err := BuildGraph(m)
	if err != nil {
		t.Fatalf("BuildGraph failed: %v", err)
	}

	out := graph.DOT(nil)
	if !strings.HasPrefix(out, "digraph tasks {") {
		t.Errorf("dot output missing header:\n%s", out)
	}
	if !strings.Contains(out, `"scaffold" -> "api";`) {
		t.Errorf("dot output missing edge:\n%s", out)
	}
}

func TestGraphASCII(t *testing.T) {
	m := mustManifest(t, sampleManifest)
	graph, err := BuildGraph(m)
	if err != nil {
		t.Fatalf("BuildGraph failed: %v", err)
	}

	out := graph.ASCII(nil)
	if !strings.Contains(out, "Level 0:") || !strings.Contains(out, "Level 2:") {
		t.Errorf("ascii output missing levels:\n%s", out)
	}
	if !strings.Contains(out, "depends on: api, storage") {
		t.Errorf("ascii output missing dependency line:\n%s", out)
	}
}
