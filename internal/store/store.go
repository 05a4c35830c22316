// Package store persists sweep runs and their crashes for operator history.
// The flat results log stays the canonical analyzer input; the store answers
// "what ran, when, and what did it find".
package store

// DefaultDBPath is the default relative path for the SQLite DB (per-workspace).
// Resolve against cwd; Open() creates the parent dir (e.g. .trisect).
const DefaultDBPath = ".trisect/trisect.db"

// Run is one sweep invocation.
type Run struct {
	ID         int64
	Binary     string
	Toolchain  string // first line of the toolchain's --version output
	Jobs       int
	StartedAt  string
	FinishedAt string
	Status     string // "running", "done", "aborted"
	Submitted  int
	Valid      int
	Invalid    int
	Crashed    int
}

// Crash is one persisted sentinel hit, tied to the run that found it.
type Crash struct {
	ID         int64
	RunID      int64
	Triple     string
	Diagnostic string
	CreatedAt  string
}

// Store is the persistence facade for run history. CLI code uses only this
// interface; implementation is SQLite or in-memory.
type Store interface {
	// CreateRun inserts a run in "running" state and returns its id.
	CreateRun(r *Run) (int64, error)
	// FinishRun writes the final status, counters and finished_at.
	FinishRun(r *Run) error
	// GetRun returns the run by id, or nil if absent.
	GetRun(id int64) (*Run, error)
	// ListRuns returns all runs, most recent first.
	ListRuns() ([]*Run, error)
	// InsertCrash appends a crash for a run.
	InsertCrash(c *Crash) (int64, error)
	// ListCrashesByRun returns a run's crashes in insertion order.
	ListCrashesByRun(runID int64) ([]*Crash, error)
	Close() error
}
