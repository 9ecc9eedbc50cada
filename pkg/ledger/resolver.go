package ledger

// EligibleTasks returns, in manifest declaration order, every task whose
// depends_on set is fully satisfied (complete or skipped) and whose own
// status is not-started or blocked. It is a pure query: it does not start
// anything and is agnostic to how many of the results a session picks up.
func EligibleTasks(m *Manifest, led *Ledger) []string {
	if m == nil {
		return nil
	}

	var eligible []string
	for _, id := range m.Order() {
		if !startable(statusIn(led, id)) {
			continue
		}
		def, _ := m.TaskByID(id)
		if depsSatisfied(led, def) {
			eligible = append(eligible, id)
		}
	}
	return eligible
}

// EligibleGroup is a manifest group filtered down to its eligible tasks.
type EligibleGroup struct {
	Name     string   `json:"name"`
	Parallel bool     `json:"parallel,omitempty"`
	Tasks    []string `json:"tasks"`
}

// EligibleByGroup groups the eligible tasks by their manifest group,
// preserving declaration order. Groups with no eligible tasks are omitted.
func EligibleByGroup(m *Manifest, led *Ledger) []EligibleGroup {
	if m == nil {
		return nil
	}

	eligible := make(map[string]bool)
	for _, id := range EligibleTasks(m, led) {
		eligible[id] = true
	}

	var groups []EligibleGroup
	for _, group := range m.Groups {
		eg := EligibleGroup{Name: group.Name, Parallel: group.Parallel}
		for _, def := range group.Tasks {
			if eligible[def.ID] {
				eg.Tasks = append(eg.Tasks, def.ID)
			}
		}
		if len(eg.Tasks) > 0 {
			groups = append(groups, eg)
		}
	}
	return groups
}

func startable(s Status) bool {
	return s == StatusNotStarted || s == StatusBlocked
}

func depsSatisfied(led *Ledger, def *TaskDef) bool {
	for _, depID := range def.DependsOn {
		if !statusIn(led, depID).Terminal() {
			return false
		}
	}
	return true
}

func statusIn(led *Ledger, id string) Status {
	if led == nil {
		return StatusNotStarted
	}
	if task, ok := led.Tasks[id]; ok {
		return task.Status
	}
	return StatusNotStarted
}
