package ledger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultLedgerFile is the conventional ledger file name.
	DefaultLedgerFile = "progress.yaml"
	// DefaultManifestFile is the conventional manifest file name.
	DefaultManifestFile = "manifest.yaml"

	lockTimeout = 5 * time.Second
)

// Store owns the on-disk ledger for one plan directory. Every mutation is
// transactional: it is applied to a copy, checked against the full invariant
// set, and persisted atomically only when zero violations remain; otherwise
// the write is rejected and the prior state retained.
//
// Writes take a flock on a sidecar lock file, and the ledger carries a
// monotonically increasing version counter checked on save, so a stale
// in-memory ledger can never clobber another session's work.
type Store struct {
	Dir          string
	LedgerFile   string
	ManifestFile string
}

// NewStore creates a store for a plan directory using the conventional
// file names.
func NewStore(dir string) *Store {
	return &Store{
		Dir:          dir,
		LedgerFile:   DefaultLedgerFile,
		ManifestFile: DefaultManifestFile,
	}
}

// LedgerPath returns the full path of the ledger file.
func (s *Store) LedgerPath() string {
	return filepath.Join(s.Dir, s.LedgerFile)
}

// ManifestPath returns the full path of the manifest file.
func (s *Store) ManifestPath() string {
	return filepath.Join(s.Dir, s.ManifestFile)
}

// LoadLedger reads and normalizes the ledger file.
func (s *Store) LoadLedger() (*Ledger, error) {
	data, err := os.ReadFile(s.LedgerPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no ledger at %s (run 'ledger init' first): %w", s.LedgerPath(), err)
		}
		return nil, fmt.Errorf("reading ledger: %w", err)
	}

	var led Ledger
	if err := yaml.Unmarshal(data, &led); err != nil {
		return nil, fmt.Errorf("parsing ledger %s: %w", s.LedgerPath(), err)
	}
	if err := led.normalize(); err != nil {
		return nil, fmt.Errorf("ledger %s: %w", s.LedgerPath(), err)
	}
	return &led, nil
}

// LoadManifest reads and validates the manifest file.
func (s *Store) LoadManifest() (*Manifest, error) {
	return LoadManifest(s.ManifestPath())
}

// LoadManifestIfPresent tolerates a missing manifest: dependency checks are
// skipped for ledgers audited without one.
func (s *Store) LoadManifestIfPresent() (*Manifest, error) {
	if _, err := os.Stat(s.ManifestPath()); os.IsNotExist(err) {
		return nil, nil
	}
	return s.LoadManifest()
}

// Load reads the ledger and, when present, the manifest, reconciling any
// manifest tasks the ledger does not track yet.
func (s *Store) Load() (*Ledger, *Manifest, error) {
	led, err := s.LoadLedger()
	if err != nil {
		return nil, nil, err
	}
	m, err := s.LoadManifestIfPresent()
	if err != nil {
		return nil, nil, err
	}
	if added := led.Reconcile(m); len(added) > 0 {
		log.WithField("tasks", added).Debug("manifest tasks not in ledger, treating as not-started")
	}
	return led, m, nil
}

// Get returns a single task from the on-disk ledger.
func (s *Store) Get(taskID string) (*Task, error) {
	led, err := s.LoadLedger()
	if err != nil {
		return nil, err
	}
	return led.Get(taskID)
}

// Init scaffolds a new ledger from the manifest, every task not-started.
// It fails if a ledger already exists.
func (s *Store) Init() (*Ledger, error) {
	if _, err := os.Stat(s.LedgerPath()); err == nil {
		return nil, fmt.Errorf("ledger already exists at %s", s.LedgerPath())
	}
	m, err := s.LoadManifest()
	if err != nil {
		return nil, err
	}

	led := NewFromManifest(m)
	led.refreshDerived(m)
	if err := s.writeLedger(led); err != nil {
		return nil, err
	}
	return led, nil
}

// Save persists a previously loaded ledger. The on-disk version must match
// the ledger's version or the save fails with ErrConflict; on success the
// version is bumped. The full invariant set is enforced first.
func (s *Store) Save(led *Ledger) error {
	lock, err := s.acquireLock()
	if err != nil {
		return err
	}
	defer s.releaseLock(lock)

	m, err := s.LoadManifestIfPresent()
	if err != nil {
		return err
	}
	return s.saveLocked(led, m)
}

func (s *Store) saveLocked(led *Ledger, m *Manifest) error {
	// Rewrite the materialized views first: the statuses being saved are the
	// truth, and stale views carried over from the last load must not veto
	// the write. The partition invariants still catch hand-edited drift on
	// audit, where no rewrite happens.
	led.refreshDerived(m)

	if violations := Validate(led, m); len(violations) > 0 {
		return ConsistencyError{Violations: violations}
	}

	if data, err := os.ReadFile(s.LedgerPath()); err == nil {
		var disk Ledger
		if err := yaml.Unmarshal(data, &disk); err == nil && disk.Version != led.Version {
			return fmt.Errorf("on-disk version %d, loaded version %d: %w",
				disk.Version, led.Version, ErrConflict)
		}
	}

	led.Version++
	return s.writeLedger(led)
}

// Update runs a mutation inside the lock: load fresh state, apply fn to a
// copy, validate, persist. The returned ledger is the persisted state.
func (s *Store) Update(fn func(led *Ledger, m *Manifest) error) (*Ledger, error) {
	lock, err := s.acquireLock()
	if err != nil {
		return nil, err
	}
	defer s.releaseLock(lock)

	led, err := s.LoadLedger()
	if err != nil {
		return nil, err
	}
	m, err := s.LoadManifestIfPresent()
	if err != nil {
		return nil, err
	}
	led.Reconcile(m)

	work := led.Clone()
	if err := fn(work, m); err != nil {
		return nil, err
	}

	if err := s.saveLocked(work, m); err != nil {
		return nil, err
	}
	return work, nil
}

// SetStatus transitions a task to a new status, stamping timestamps and
// maintaining the current pointer. Unreachable transitions fail with
// InvalidTransitionError; any resulting invariant breach rejects the whole
// write with ConsistencyError.
func (s *Store) SetStatus(taskID string, newStatus Status, now time.Time) (*Ledger, error) {
	if !ValidStatus(newStatus) {
		return nil, fmt.Errorf("invalid status %q", newStatus)
	}
	return s.Update(func(led *Ledger, m *Manifest) error {
		return applyStatus(led, taskID, newStatus, now)
	})
}

func applyStatus(led *Ledger, taskID string, newStatus Status, now time.Time) error {
	task, err := led.Get(taskID)
	if err != nil {
		return err
	}
	if !CanTransition(task.Status, newStatus) {
		return InvalidTransitionError{TaskID: taskID, From: task.Status, To: newStatus}
	}

	from := task.Status
	task.Status = newStatus
	task.UpdatedAt = now

	switch newStatus {
	case StatusInProgress:
		if task.StartedAt == nil {
			started := now
			task.StartedAt = &started
		}
		led.CurrentTask = taskID
		if led.NextAction == nil || led.NextAction.Task != taskID {
			led.NextAction = &NextAction{Task: taskID}
		}
	case StatusComplete:
		completed := now
		task.CompletedAt = &completed
	}

	if from == StatusInProgress && newStatus != StatusInProgress && led.CurrentTask == taskID {
		led.CurrentTask = ""
		led.NextAction = nil
	}

	return nil
}

// Reset returns a task to not-started, clearing its timestamps. This is the
// only way out of a terminal status. Decisions are history and survive.
func (s *Store) Reset(taskID string, now time.Time) (*Ledger, error) {
	return s.Update(func(led *Ledger, m *Manifest) error {
		task, err := led.Get(taskID)
		if err != nil {
			return err
		}
		task.Status = StatusNotStarted
		task.StartedAt = nil
		task.CompletedAt = nil
		task.UpdatedAt = now
		if led.CurrentTask == taskID {
			led.CurrentTask = ""
			led.NextAction = nil
		}
		return nil
	})
}

// RecordDecision appends an immutable decision record. An empty taskID
// attaches the decision to the task currently in progress.
func (s *Store) RecordDecision(taskID, description, rationale string, now time.Time) (*Ledger, error) {
	return s.Update(func(led *Ledger, m *Manifest) error {
		if taskID == "" {
			if led.CurrentTask == "" {
				return fmt.Errorf("no task in progress to attach the decision to")
			}
			taskID = led.CurrentTask
		}
		task, err := led.Get(taskID)
		if err != nil {
			return err
		}
		task.Decisions = append(task.Decisions, Decision{
			ID:          uuid.NewString(),
			Description: description,
			Rationale:   rationale,
			RecordedAt:  now,
		})
		task.UpdatedAt = now
		return nil
	})
}

// AddArtifact records a produced-artifact reference on a task.
func (s *Store) AddArtifact(taskID, ref string, now time.Time) (*Ledger, error) {
	return s.Update(func(led *Ledger, m *Manifest) error {
		task, err := led.Get(taskID)
		if err != nil {
			return err
		}
		task.Artifacts = append(task.Artifacts, ref)
		task.UpdatedAt = now
		return nil
	})
}

// SetNextActionNote sets the prose note on the next action, which always
// references the current task.
func (s *Store) SetNextActionNote(note string) (*Ledger, error) {
	return s.Update(func(led *Ledger, m *Manifest) error {
		if led.CurrentTask == "" {
			return fmt.Errorf("no task in progress")
		}
		led.NextAction = &NextAction{Task: led.CurrentTask, Note: note}
		return nil
	})
}

// File locking

func (s *Store) acquireLock() (*flock.Flock, error) {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create plan directory: %w", err)
	}
	lock := flock.New(s.LedgerPath() + ".lock")
	deadline := time.Now().Add(lockTimeout)
	for {
		locked, err := lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("acquire ledger lock: %w", err)
		}
		if locked {
			return lock, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("ledger %s is locked by another session", s.LedgerPath())
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func (s *Store) releaseLock(lock *flock.Flock) {
	if err := lock.Unlock(); err != nil {
		log.WithError(err).Warn("release ledger lock")
	}
}

// Atomic file operations

func (s *Store) writeLedger(led *Ledger) error {
	data, err := yaml.Marshal(led)
	if err != nil {
		return fmt.Errorf("marshaling ledger: %w", err)
	}
	if err := writeAtomic(s.LedgerPath(), data); err != nil {
		return fmt.Errorf("writing ledger: %w", err)
	}
	log.WithFields(map[string]interface{}{
		"path":    s.LedgerPath(),
		"version": led.Version,
	}).Debug("ledger written")
	return nil
}

func writeAtomic(path string, content []byte) error {
	var perm os.FileMode = 0644
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode()
	}

	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}

	success := false
	defer func() {
		if !success {
			f.Close()
			os.Remove(f.Name())
		}
	}()

	if err = f.Chmod(perm); err != nil {
		return err
	}
	if _, err = f.Write(content); err != nil {
		return err
	}
	if err = f.Sync(); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	if err = os.Rename(f.Name(), path); err != nil {
		return err
	}

	success = true
	return nil
}
