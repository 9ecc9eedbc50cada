package ledger

import (
	"errors"
	"fmt"
	"strings"
)

// ErrConflict is returned when the ledger file changed on disk between load
// and save (version counter mismatch).
var ErrConflict = errors.New("ledger changed on disk (version conflict)")

// TaskNotFoundError is returned when a task id is not present in the ledger.
type TaskNotFoundError struct {
	TaskID string
}

func (e TaskNotFoundError) Error() string {
	return fmt.Sprintf("task %q not found in ledger", e.TaskID)
}

// InvalidTransitionError is returned when a status change is not permitted
// by the transition table.
type InvalidTransitionError struct {
	TaskID string
	From   Status
	To     Status
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("task %q: invalid transition %s -> %s", e.TaskID, e.From, e.To)
}

// MissingDependencyError is returned when a manifest task depends on an
// undeclared task id.
type MissingDependencyError struct {
	TaskID    string
	DependsOn string
}

func (e MissingDependencyError) Error() string {
	return fmt.Sprintf("unknown dependency %q in task %q", e.DependsOn, e.TaskID)
}

// CyclicDependencyError is returned when the manifest's depends_on graph
// contains a cycle. Cycle holds the offending path, first node repeated last.
type CyclicDependencyError struct {
	Cycle []string
}

func (e CyclicDependencyError) Error() string {
	return fmt.Sprintf("circular dependency detected: %s", strings.Join(e.Cycle, " -> "))
}

// ConsistencyError is returned when a mutation would leave the ledger in a
// state that violates one or more invariants. The write is rejected and the
// prior state retained.
type ConsistencyError struct {
	Violations []Violation
}

func (e ConsistencyError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.String())
	}
	return fmt.Sprintf("ledger write rejected: %s", strings.Join(msgs, "; "))
}
