package ledger

import (
	"fmt"
	"strings"
)

// DependencyGraph represents the manifest's task dependency relationships.
type DependencyGraph struct {
	nodes map[string]*TaskDef
	order []string
	edges map[string][]string // task -> dependencies
}

// BuildGraph creates a dependency graph from a manifest and validates it:
// unknown dependencies, self-dependencies, and cycles are rejected.
func BuildGraph(m *Manifest) (*DependencyGraph, error) {
	graph := &DependencyGraph{
		nodes: make(map[string]*TaskDef),
		order: m.Order(),
		edges: make(map[string][]string),
	}

	for _, id := range m.Order() {
		def, _ := m.TaskByID(id)
		graph.nodes[id] = def
		graph.edges[id] = append([]string(nil), def.DependsOn...)
	}

	if err := graph.validate(); err != nil {
		return nil, err
	}

	return graph, nil
}

func (dg *DependencyGraph) validate() error {
	for _, id := range dg.order {
		for _, depID := range dg.edges[id] {
			if _, exists := dg.nodes[depID]; !exists {
				return MissingDependencyError{TaskID: id, DependsOn: depID}
			}
			if depID == id {
				return CyclicDependencyError{Cycle: []string{id, id}}
			}
		}
	}

	if cycle := dg.detectCycle(); len(cycle) > 0 {
		return CyclicDependencyError{Cycle: cycle}
	}

	return nil
}

// detectCycle uses DFS to find a dependency cycle, returning the offending
// path with the entry node repeated at the end, or nil.
func (dg *DependencyGraph) detectCycle() []string {
	visited := make(map[string]bool)
	recursionStack := make(map[string]bool)
	path := []string{}

	var walk func(node string) []string
	walk = func(node string) []string {
		visited[node] = true
		recursionStack[node] = true
		path = append(path, node)

		for _, dep := range dg.edges[node] {
			if !visited[dep] {
				if cycle := walk(dep); cycle != nil {
					return cycle
				}
			} else if recursionStack[dep] {
				for i, n := range path {
					if n == dep {
						return append(append([]string(nil), path[i:]...), dep)
					}
				}
			}
		}

		recursionStack[node] = false
		path = path[:len(path)-1]
		return nil
	}

	for _, node := range dg.order {
		if !visited[node] {
			if cycle := walk(node); cycle != nil {
				return cycle
			}
		}
	}

	return nil
}

// Stages performs a topological grouping of tasks into stages whose members
// have no dependencies on each other. When a ledger is given, tasks already
// in a terminal state are omitted.
func (dg *DependencyGraph) Stages(led *Ledger) ([][]string, error) {
	done := make(map[string]bool)
	if led != nil {
		for _, id := range dg.order {
			if dg.statusIn(led, id).Terminal() {
				done[id] = true
			}
		}
	}

	stages := [][]string{}
	processed := make(map[string]bool)
	for id := range done {
		processed[id] = true
	}

	for len(processed) < len(dg.order) {
		stage := []string{}

		for _, id := range dg.order {
			if processed[id] {
				continue
			}
			ready := true
			for _, dep := range dg.edges[id] {
				if !processed[dep] {
					ready = false
					break
				}
			}
			if ready {
				stage = append(stage, id)
			}
		}

		if len(stage) == 0 {
			return nil, fmt.Errorf("unable to stage tasks: circular dependency or invalid state")
		}

		stages = append(stages, stage)
		for _, id := range stage {
			processed[id] = true
		}
	}

	return stages, nil
}

func (dg *DependencyGraph) statusIn(led *Ledger, id string) Status {
	if led == nil {
		return StatusNotStarted
	}
	if task, ok := led.Tasks[id]; ok {
		return task.Status
	}
	return StatusNotStarted
}

// Mermaid generates a Mermaid diagram of the graph with ledger statuses.
func (dg *DependencyGraph) Mermaid(led *Ledger) string {
	var buf strings.Builder
	buf.WriteString("graph TD\n")

	for _, id := range dg.order {
		status := dg.statusIn(led, id)
		buf.WriteString(fmt.Sprintf("    %s[\"%s (%s)\"]\n", mermaidID(id), id, status))
	}

	buf.WriteString("\n")

	for _, id := range dg.order {
		for _, dep := range dg.edges[id] {
			buf.WriteString(fmt.Sprintf("    %s --> %s\n", mermaidID(dep), mermaidID(id)))
		}
	}

	buf.WriteString("\n")
	buf.WriteString("    classDef complete fill:#90EE90,stroke:#228B22\n")
	buf.WriteString("    classDef inprogress fill:#FFD700,stroke:#FFA500\n")
	buf.WriteString("    classDef notstarted fill:#D3D3D3,stroke:#696969\n")
	buf.WriteString("    classDef failed fill:#FFB6C1,stroke:#DC143C\n")
	buf.WriteString("    classDef blocked fill:#DDA0DD,stroke:#8B008B\n")
	buf.WriteString("    classDef skipped fill:#87CEEB,stroke:#4682B4\n")

	statusGroups := make(map[Status][]string)
	for _, id := range dg.order {
		status := dg.statusIn(led, id)
		statusGroups[status] = append(statusGroups[status], mermaidID(id))
	}
	for status, nodes := range statusGroups {
		buf.WriteString(fmt.Sprintf("    class %s %s\n", strings.Join(nodes, ","), mermaidClass(status)))
	}

	return buf.String()
}

// DOT generates a Graphviz representation of the graph.
func (dg *DependencyGraph) DOT(led *Ledger) string {
	var buf strings.Builder
	buf.WriteString("digraph tasks {\n")
	buf.WriteString("    rankdir=TD;\n")
	buf.WriteString("    node [shape=box, style=rounded];\n\n")

	for _, id := range dg.order {
		status := dg.statusIn(led, id)
		buf.WriteString(fmt.Sprintf("    \"%s\" [label=\"%s\\n%s\", fillcolor=%s, style=filled];\n",
			id, id, status, dotColor(status)))
	}

	buf.WriteString("\n")

	for _, id := range dg.order {
		for _, dep := range dg.edges[id] {
			buf.WriteString(fmt.Sprintf("    \"%s\" -> \"%s\";\n", dep, id))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// ASCII generates a plain-text representation grouped by dependency level.
func (dg *DependencyGraph) ASCII(led *Ledger) string {
	var buf strings.Builder
	buf.WriteString("Task Dependency Graph\n")
	buf.WriteString("=====================\n\n")

	stages, err := dg.Stages(nil)
	if err != nil {
		return buf.String()
	}

	for i, stage := range stages {
		buf.WriteString(fmt.Sprintf("Level %d:\n", i))
		for _, id := range stage {
			status := dg.statusIn(led, id)
			buf.WriteString(fmt.Sprintf("  [%s] %s\n", status, id))
			if deps := dg.edges[id]; len(deps) > 0 {
				buf.WriteString(fmt.Sprintf("      depends on: %s\n", strings.Join(deps, ", ")))
			}
		}
		buf.WriteString("\n")
	}

	return buf.String()
}

func mermaidID(id string) string {
	return strings.ReplaceAll(id, "-", "_")
}

func mermaidClass(s Status) string {
	switch s {
	case StatusComplete:
		return "complete"
	case StatusInProgress:
		return "inprogress"
	case StatusFailed:
		return "failed"
	case StatusBlocked:
		return "blocked"
	case StatusSkipped:
		return "skipped"
	default:
		return "notstarted"
	}
}

func dotColor(s Status) string {
	switch s {
	case StatusComplete:
		return "lightgreen"
	case StatusInProgress:
		return "gold"
	case StatusFailed:
		return "lightpink"
	case StatusBlocked:
		return "plum"
	case StatusSkipped:
		return "lightblue"
	default:
		return "lightgray"
	}
}
