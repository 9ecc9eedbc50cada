package ledger

import "time"

// Status represents the authoritative state of a task in the ledger.
type Status string

const (
	StatusNotStarted Status = "not-started"
	StatusInProgress Status = "in-progress"
	StatusComplete   Status = "complete"
	StatusFailed     Status = "failed"
	StatusSkipped    Status = "skipped"
	StatusBlocked    Status = "blocked"
)

// ValidStatus reports whether s is a known task status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusComplete,
		StatusFailed, StatusSkipped, StatusBlocked:
		return true
	}
	return false
}

// transitions is the status transition table. Complete and skipped are
// terminal; Reset is the only way out of them. Re-marking a task in-progress
// is allowed so a resumed session can repeat its own start call.
var transitions = map[Status][]Status{
	StatusNotStarted: {StatusInProgress, StatusSkipped, StatusBlocked},
	StatusInProgress: {StatusInProgress, StatusComplete, StatusFailed, StatusBlocked},
	StatusBlocked:    {StatusNotStarted, StatusInProgress, StatusSkipped},
	StatusFailed:     {StatusInProgress, StatusSkipped, StatusBlocked},
	StatusComplete:   {},
	StatusSkipped:    {},
}

// CanTransition reports whether the transition table permits from -> to.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Terminal reports whether s is a done state from the manifest's point of
// view: dependent tasks may start once their dependencies are terminal.
func (s Status) Terminal() bool {
	return s == StatusComplete || s == StatusSkipped
}

// Decision is an immutable record of a choice made while a task was active.
type Decision struct {
	ID          string    `yaml:"id" json:"id"`
	Description string    `yaml:"description" json:"description" validate:"required"`
	Rationale   string    `yaml:"rationale,omitempty" json:"rationale,omitempty"`
	RecordedAt  time.Time `yaml:"recorded_at" json:"recorded_at"`
}

// Task is a single unit of work tracked by the ledger. The task id is the
// ledger map key; ID is filled in after load.
type Task struct {
	Status      Status     `yaml:"status" json:"status"`
	StartedAt   *time.Time `yaml:"started_at,omitempty" json:"started_at,omitempty"`
	CompletedAt *time.Time `yaml:"completed_at,omitempty" json:"completed_at,omitempty"`
	UpdatedAt   time.Time  `yaml:"updated_at,omitempty" json:"updated_at,omitempty"`
	Decisions   []Decision `yaml:"decisions,omitempty" json:"decisions,omitempty"`
	Artifacts   []string   `yaml:"artifacts,omitempty" json:"artifacts,omitempty"`

	// Derived
	ID string `yaml:"-" json:"-"`
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	c := *t
	if t.StartedAt != nil {
		started := *t.StartedAt
		c.StartedAt = &started
	}
	if t.CompletedAt != nil {
		completed := *t.CompletedAt
		c.CompletedAt = &completed
	}
	c.Decisions = append([]Decision(nil), t.Decisions...)
	c.Artifacts = append([]string(nil), t.Artifacts...)
	return &c
}
