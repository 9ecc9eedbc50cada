package ledger

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// NextAction is a structural reference to the task the next session should
// pick up. Older ledgers stored this as free prose; those are accepted on
// load and rewritten structurally on the next save.
type NextAction struct {
	Task string `yaml:"task" json:"task"`
	Note string `yaml:"note,omitempty" json:"note,omitempty"`
}

// UnmarshalYAML accepts both the structural form and a legacy prose string.
func (n *NextAction) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		n.Note = value.Value
		return nil
	}
	type plain NextAction
	var p plain
	if err := value.Decode(&p); err != nil {
		return fmt.Errorf("parsing next_action: %w", err)
	}
	*n = NextAction(p)
	return nil
}

// Render produces the human-readable next-action line.
func (n *NextAction) Render() string {
	if n == nil {
		return ""
	}
	if n.Note != "" {
		if n.Task != "" && !strings.Contains(n.Note, n.Task) {
			return fmt.Sprintf("%s (task %s)", n.Note, n.Task)
		}
		return n.Note
	}
	return fmt.Sprintf("continue work on task %s", n.Task)
}

// OverallStatus summarizes the whole ledger.
type OverallStatus string

const (
	OverallNotStarted OverallStatus = "not-started"
	OverallInProgress OverallStatus = "in-progress"
	OverallFailed     OverallStatus = "failed"
	OverallComplete   OverallStatus = "complete"
)

// Ledger is the aggregate root: the authoritative record of per-task status
// for a plan. The work_* arrays and overall_status are materialized views,
// rewritten from Derive on every save; the per-task statuses are the only
// truth and the checker flags any drift between the two.
type Ledger struct {
	Version     int              `yaml:"version" json:"version"`
	CurrentTask string           `yaml:"current_task,omitempty" json:"current_task,omitempty"`
	NextAction  *NextAction      `yaml:"next_action,omitempty" json:"next_action,omitempty"`
	Tasks       map[string]*Task `yaml:"tasks" json:"tasks"`

	OverallStatus  OverallStatus `yaml:"overall_status,omitempty" json:"overall_status,omitempty"`
	WorkCompleted  []string      `yaml:"work_completed,omitempty" json:"work_completed,omitempty"`
	WorkInProgress []string      `yaml:"work_in_progress,omitempty" json:"work_in_progress,omitempty"`
	WorkRemaining  []string      `yaml:"work_remaining,omitempty" json:"work_remaining,omitempty"`
}

// NewLedger returns an empty ledger at version 1.
func NewLedger() *Ledger {
	return &Ledger{
		Version: 1,
		Tasks:   make(map[string]*Task),
	}
}

// NewFromManifest scaffolds a ledger with every manifest task not-started.
func NewFromManifest(m *Manifest) *Ledger {
	l := NewLedger()
	for _, id := range m.Order() {
		l.Tasks[id] = &Task{ID: id, Status: StatusNotStarted}
	}
	return l
}

// Get returns the task with the given id.
func (l *Ledger) Get(id string) (*Task, error) {
	task, ok := l.Tasks[id]
	if !ok {
		return nil, TaskNotFoundError{TaskID: id}
	}
	return task, nil
}

// Clone returns a deep copy, used for transactional mutation: changes are
// applied to the copy and only persisted once the invariants hold.
func (l *Ledger) Clone() *Ledger {
	c := *l
	c.Tasks = make(map[string]*Task, len(l.Tasks))
	for id, task := range l.Tasks {
		c.Tasks[id] = task.Clone()
	}
	if l.NextAction != nil {
		next := *l.NextAction
		c.NextAction = &next
	}
	c.WorkCompleted = append([]string(nil), l.WorkCompleted...)
	c.WorkInProgress = append([]string(nil), l.WorkInProgress...)
	c.WorkRemaining = append([]string(nil), l.WorkRemaining...)
	return &c
}

// TaskIDs returns all ledger task ids, sorted.
func (l *Ledger) TaskIDs() []string {
	ids := make([]string, 0, len(l.Tasks))
	for id := range l.Tasks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// InProgress returns the ids of all in-progress tasks, sorted.
func (l *Ledger) InProgress() []string {
	var ids []string
	for id, task := range l.Tasks {
		if task.Status == StatusInProgress {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Reconcile materializes manifest tasks that the ledger does not know about
// yet as not-started. Ledger tasks absent from the manifest are kept; the
// audit reports them as orphans. Returns the ids that were added.
func (l *Ledger) Reconcile(m *Manifest) []string {
	if m == nil {
		return nil
	}
	var added []string
	for _, id := range m.Order() {
		if _, ok := l.Tasks[id]; !ok {
			l.Tasks[id] = &Task{ID: id, Status: StatusNotStarted}
			added = append(added, id)
		}
	}
	return added
}

// normalize fills derived fields after unmarshaling and migrates a legacy
// prose next_action to the structural form when it names the current task.
func (l *Ledger) normalize() error {
	if l.Tasks == nil {
		l.Tasks = make(map[string]*Task)
	}
	for id, task := range l.Tasks {
		if task == nil {
			return fmt.Errorf("task %q has no body", id)
		}
		task.ID = id
		if !ValidStatus(task.Status) {
			return fmt.Errorf("task %q has invalid status %q", id, task.Status)
		}
	}
	if l.NextAction != nil && l.NextAction.Task == "" &&
		l.CurrentTask != "" && strings.Contains(l.NextAction.Note, l.CurrentTask) {
		l.NextAction.Task = l.CurrentTask
	}
	return nil
}
