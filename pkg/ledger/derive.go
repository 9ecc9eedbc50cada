package ledger

import (
	"sort"

	"github.com/sirupsen/logrus"
)

// log is the package logger. Commands tune it from config; the default
// level only surfaces consistency warnings.
var log = logrus.New()

func init() {
	log.SetLevel(logrus.WarnLevel)
}

// SetLogLevel adjusts the package log level.
func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}

// Snapshot is the derived view of a ledger. It is recomputed from the
// authoritative per-task statuses on every read and never stored as
// independent truth.
type Snapshot struct {
	CurrentTask    string        `json:"current_task,omitempty"`
	CurrentPhase   string        `json:"current_phase,omitempty"`
	OverallStatus  OverallStatus `json:"overall_status"`
	WorkCompleted  []string      `json:"work_completed"`
	WorkInProgress []string      `json:"work_in_progress"`
	WorkRemaining  []string      `json:"work_remaining"`
	NextAction     string        `json:"next_action,omitempty"`
}

// Derive computes the snapshot for a ledger. Tasks appear in manifest
// declaration order; ledger tasks the manifest does not declare follow in
// sorted order. The work views exactly partition the tasks: complete and
// skipped are completed, in-progress is in progress, everything else
// (not-started, blocked, failed) is remaining.
func Derive(led *Ledger, m *Manifest) Snapshot {
	snap := Snapshot{
		WorkCompleted:  []string{},
		WorkInProgress: []string{},
		WorkRemaining:  []string{},
	}

	order := taskOrder(led, m)

	for _, id := range order {
		task := led.Tasks[id]
		switch {
		case task.Status.Terminal():
			snap.WorkCompleted = append(snap.WorkCompleted, id)
		case task.Status == StatusInProgress:
			snap.WorkInProgress = append(snap.WorkInProgress, id)
		default:
			snap.WorkRemaining = append(snap.WorkRemaining, id)
		}
	}

	snap.CurrentTask = currentTask(led, order)
	snap.CurrentPhase = currentPhase(led, m, snap.CurrentTask)
	snap.OverallStatus = overallStatus(led)
	snap.NextAction = led.NextAction.Render()

	return snap
}

// taskOrder returns every ledger task id, manifest-declared ones first in
// declaration order, orphans after in sorted order.
func taskOrder(led *Ledger, m *Manifest) []string {
	var order []string
	seen := make(map[string]bool)
	if m != nil {
		for _, id := range m.Order() {
			if _, ok := led.Tasks[id]; ok {
				order = append(order, id)
				seen[id] = true
			}
		}
	}
	var rest []string
	for id := range led.Tasks {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}

// currentTask resolves the current pointer. Under invariant 1 there is at
// most one in-progress task; if a hand-edited ledger has several, the
// earliest-declared one wins and the condition is logged.
func currentTask(led *Ledger, order []string) string {
	if led.CurrentTask != "" {
		if task, ok := led.Tasks[led.CurrentTask]; ok && task.Status == StatusInProgress {
			return led.CurrentTask
		}
	}

	var inProgress []string
	for _, id := range order {
		if led.Tasks[id].Status == StatusInProgress {
			inProgress = append(inProgress, id)
		}
	}
	if len(inProgress) == 0 {
		return ""
	}
	if len(inProgress) > 1 || led.CurrentTask != "" {
		log.WithFields(logrus.Fields{
			"in_progress":  inProgress,
			"current_task": led.CurrentTask,
		}).Warn("ledger is inconsistent, using earliest-declared in-progress task as current")
	}
	return inProgress[0]
}

// currentPhase is the group of the current task, or the first group still
// holding a non-terminal task when nothing is in progress.
func currentPhase(led *Ledger, m *Manifest, current string) string {
	if m == nil {
		return ""
	}
	if current != "" {
		if name, ok := m.GroupOf(current); ok {
			return name
		}
	}
	for _, group := range m.Groups {
		for _, def := range group.Tasks {
			if !statusIn(led, def.ID).Terminal() {
				return group.Name
			}
		}
	}
	return ""
}

func overallStatus(led *Ledger) OverallStatus {
	if len(led.Tasks) == 0 {
		return OverallNotStarted
	}

	allDone := true
	anyStarted := false
	anyFailed := false
	anyRunning := false
	for _, task := range led.Tasks {
		if !task.Status.Terminal() {
			allDone = false
		}
		if task.Status != StatusNotStarted {
			anyStarted = true
		}
		if task.Status == StatusFailed {
			anyFailed = true
		}
		if task.Status == StatusInProgress {
			anyRunning = true
		}
	}

	switch {
	case allDone:
		return OverallComplete
	case anyFailed && !anyRunning:
		return OverallFailed
	case anyStarted:
		return OverallInProgress
	default:
		return OverallNotStarted
	}
}

// refreshDerived rewrites the materialized views from the authoritative
// statuses. The store calls this before every persist so the stored arrays
// can never drift from the statuses they summarize.
func (l *Ledger) refreshDerived(m *Manifest) {
	snap := Derive(l, m)
	l.OverallStatus = snap.OverallStatus
	l.WorkCompleted = snap.WorkCompleted
	l.WorkInProgress = snap.WorkInProgress
	l.WorkRemaining = snap.WorkRemaining
}
