package ledger

import (
	"fmt"
	"sort"
	"strings"
)

// Violation is one broken ledger invariant, identified by its number so a
// human or agent can correct the file by hand.
//
// The invariants:
//
//	1. At most one task is in-progress.
//	2. The current_task pointer, if set, names an in-progress task.
//	3. next_action references the current task.
//	4. Every complete task carries a completion timestamp.
//	5. An in-progress task's manifest dependencies are complete or skipped.
//	6. Materialized work views exactly partition the tasks by status.
//	7. overall_status is complete iff every task is complete or skipped.
type Violation struct {
	Invariant int      `json:"invariant"`
	TaskIDs   []string `json:"task_ids,omitempty"`
	Message   string   `json:"message"`
}

func (v Violation) String() string {
	if len(v.TaskIDs) > 0 {
		return fmt.Sprintf("invariant %d (%s): %s", v.Invariant, strings.Join(v.TaskIDs, ", "), v.Message)
	}
	return fmt.Sprintf("invariant %d: %s", v.Invariant, v.Message)
}

// Validate checks every ledger invariant and returns the violations found.
// It is used defensively before each write, and offensively as an audit over
// an existing file that may have been hand-edited out of sync. A nil
// manifest skips the dependency invariant.
func Validate(led *Ledger, m *Manifest) []Violation {
	var violations []Violation

	inProgress := led.InProgress()

	// 1: at most one task in-progress
	if len(inProgress) > 1 {
		violations = append(violations, Violation{
			Invariant: 1,
			TaskIDs:   inProgress,
			Message:   fmt.Sprintf("%d tasks are in-progress, at most one is allowed", len(inProgress)),
		})
	}

	// 2: current_task names an in-progress task
	if led.CurrentTask != "" {
		task, ok := led.Tasks[led.CurrentTask]
		switch {
		case !ok:
			violations = append(violations, Violation{
				Invariant: 2,
				TaskIDs:   []string{led.CurrentTask},
				Message:   "current_task names a task that does not exist",
			})
		case task.Status != StatusInProgress:
			violations = append(violations, Violation{
				Invariant: 2,
				TaskIDs:   []string{led.CurrentTask},
				Message:   fmt.Sprintf("current_task names a task with status %s, expected %s", task.Status, StatusInProgress),
			})
		}
	}

	// 3: next_action references the current task
	if led.CurrentTask != "" {
		switch {
		case led.NextAction == nil:
			violations = append(violations, Violation{
				Invariant: 3,
				TaskIDs:   []string{led.CurrentTask},
				Message:   "next_action is missing while a task is in progress",
			})
		case led.NextAction.Task != led.CurrentTask:
			violations = append(violations, Violation{
				Invariant: 3,
				TaskIDs:   []string{led.CurrentTask, led.NextAction.Task},
				Message:   fmt.Sprintf("next_action references %q, current task is %q", led.NextAction.Task, led.CurrentTask),
			})
		}
	}

	// 4: complete tasks carry a completion timestamp
	for _, id := range led.TaskIDs() {
		task := led.Tasks[id]
		if task.Status == StatusComplete && task.CompletedAt == nil {
			violations = append(violations, Violation{
				Invariant: 4,
				TaskIDs:   []string{id},
				Message:   "complete task has no completed_at timestamp",
			})
		}
	}

	// 5: in-progress tasks have satisfied dependencies
	if m != nil {
		for _, id := range inProgress {
			def, ok := m.TaskByID(id)
			if !ok {
				continue
			}
			for _, depID := range def.DependsOn {
				if !statusIn(led, depID).Terminal() {
					violations = append(violations, Violation{
						Invariant: 5,
						TaskIDs:   []string{id, depID},
						Message:   fmt.Sprintf("task is in-progress but dependency %q is %s", depID, statusIn(led, depID)),
					})
				}
			}
		}
	}

	// 6: materialized views partition the tasks
	violations = append(violations, checkPartition(led)...)

	// 7: overall_status agrees with the task statuses
	if led.OverallStatus != "" {
		allDone := true
		for _, task := range led.Tasks {
			if !task.Status.Terminal() {
				allDone = false
				break
			}
		}
		if allDone && len(led.Tasks) > 0 && led.OverallStatus != OverallComplete {
			violations = append(violations, Violation{
				Invariant: 7,
				Message:   fmt.Sprintf("every task is complete or skipped but overall_status is %s", led.OverallStatus),
			})
		}
		if !allDone && led.OverallStatus == OverallComplete {
			violations = append(violations, Violation{
				Invariant: 7,
				Message:   "overall_status is complete but unfinished tasks remain",
			})
		}
	}

	return violations
}

// checkPartition validates the materialized work views, when present,
// against the authoritative statuses: every task in exactly one view, no
// unknown ids, each view matching its statuses.
func checkPartition(led *Ledger) []Violation {
	if led.WorkCompleted == nil && led.WorkInProgress == nil && led.WorkRemaining == nil {
		return nil
	}

	var violations []Violation
	seen := make(map[string]int)
	views := []struct {
		name string
		ids  []string
		want func(Status) bool
	}{
		{"work_completed", led.WorkCompleted, func(s Status) bool { return s.Terminal() }},
		{"work_in_progress", led.WorkInProgress, func(s Status) bool { return s == StatusInProgress }},
		{"work_remaining", led.WorkRemaining, func(s Status) bool { return !s.Terminal() && s != StatusInProgress }},
	}

	for _, view := range views {
		for _, id := range view.ids {
			seen[id]++
			task, ok := led.Tasks[id]
			if !ok {
				violations = append(violations, Violation{
					Invariant: 6,
					TaskIDs:   []string{id},
					Message:   fmt.Sprintf("%s lists unknown task", view.name),
				})
				continue
			}
			if seen[id] > 1 {
				violations = append(violations, Violation{
					Invariant: 6,
					TaskIDs:   []string{id},
					Message:   "task appears in more than one work view",
				})
			}
			if !view.want(task.Status) {
				violations = append(violations, Violation{
					Invariant: 6,
					TaskIDs:   []string{id},
					Message:   fmt.Sprintf("task with status %s does not belong in %s", task.Status, view.name),
				})
			}
		}
	}

	for _, id := range led.TaskIDs() {
		if seen[id] == 0 {
			violations = append(violations, Violation{
				Invariant: 6,
				TaskIDs:   []string{id},
				Message:   "task is missing from the work views",
			})
		}
	}

	return violations
}

// OrphanedTasks returns ledger tasks the manifest no longer declares,
// sorted. These are reported by the audit as warnings, not violations:
// a manifest edit must never silently discard recorded history.
func OrphanedTasks(led *Ledger, m *Manifest) []string {
	if m == nil {
		return nil
	}
	var orphans []string
	for id := range led.Tasks {
		if !m.Has(id) {
			orphans = append(orphans, id)
		}
	}
	sort.Strings(orphans)
	return orphans
}
