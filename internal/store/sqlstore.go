package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// nowUTC returns the current UTC time as an ISO 8601 string.
func nowUTC() string { return time.Now().UTC().Format(time.RFC3339) }

// nullStr converts a sql.NullString to a plain string (empty if null).
func nullStr(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// SqlStore implements Store with SQLite.
type SqlStore struct {
	db *sql.DB
}

// Open opens or creates a SQLite DB at path and runs migrations.
// Creates the parent directory (e.g. .trisect) if it does not exist.
func Open(path string) (*SqlStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	s := &SqlStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SqlStore) migrate() error {
	var tableCount int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableCount)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableCount == 0 {
		// Fresh database.
		if _, err := s.db.Exec(schemaV1); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_version(version) VALUES(?)", schemaVersionV1); err != nil {
			return fmt.Errorf("set schema version: %w", err)
		}
		return nil
	}

	var v int
	err = s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&v)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("read schema version: %w", err)
	}
	if errors.Is(err, sql.ErrNoRows) {
		v = schemaVersionV1
		if _, err := s.db.Exec("INSERT INTO schema_version(version) VALUES(?)", v); err != nil {
			return fmt.Errorf("set schema version: %w", err)
		}
	}
	if v != schemaVersionV1 {
		return fmt.Errorf("unknown schema version %d", v)
	}
	return nil
}

// Close closes the database connection.
func (s *SqlStore) Close() error {
	return s.db.Close()
}

// CreateRun inserts a run in "running" state and returns its id.
func (s *SqlStore) CreateRun(r *Run) (int64, error) {
	if r.StartedAt == "" {
		r.StartedAt = nowUTC()
	}
	if r.Status == "" {
		r.Status = "running"
	}
	res, err := s.db.Exec(
		`INSERT INTO runs(binary, toolchain, jobs, started_at, status, submitted, valid, invalid, crashed)
		 VALUES(?, ?, ?, ?, ?, 0, 0, 0, 0)`,
		r.Binary, r.Toolchain, r.Jobs, r.StartedAt, r.Status,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	r.ID = id
	return id, nil
}

// FinishRun writes the final status, counters and finished_at for r.ID.
func (s *SqlStore) FinishRun(r *Run) error {
	if r.FinishedAt == "" {
		r.FinishedAt = nowUTC()
	}
	_, err := s.db.Exec(
		`UPDATE runs SET finished_at = ?, status = ?, submitted = ?, valid = ?, invalid = ?, crashed = ?
		 WHERE id = ?`,
		r.FinishedAt, r.Status, r.Submitted, r.Valid, r.Invalid, r.Crashed, r.ID,
	)
	if err != nil {
		return fmt.Errorf("finish run %d: %w", r.ID, err)
	}
	return nil
}

// GetRun returns the run by id, or nil if absent.
func (s *SqlStore) GetRun(id int64) (*Run, error) {
	row := s.db.QueryRow(
		`SELECT id, binary, toolchain, jobs, started_at, finished_at, status, submitted, valid, invalid, crashed
		 FROM runs WHERE id = ?`, id,
	)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run %d: %w", id, err)
	}
	return r, nil
}

// ListRuns returns all runs, most recent first.
func (s *SqlStore) ListRuns() ([]*Run, error) {
	rows, err := s.db.Query(
		`SELECT id, binary, toolchain, jobs, started_at, finished_at, status, submitted, valid, invalid, crashed
		 FROM runs ORDER BY id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var r Run
	var toolchain, finishedAt sql.NullString
	err := row.Scan(&r.ID, &r.Binary, &toolchain, &r.Jobs, &r.StartedAt,
		&finishedAt, &r.Status, &r.Submitted, &r.Valid, &r.Invalid, &r.Crashed)
	if err != nil {
		return nil, err
	}
	r.Toolchain = nullStr(toolchain)
	r.FinishedAt = nullStr(finishedAt)
	return &r, nil
}

// InsertCrash appends a crash for a run.
func (s *SqlStore) InsertCrash(c *Crash) (int64, error) {
	if c.CreatedAt == "" {
		c.CreatedAt = nowUTC()
	}
	res, err := s.db.Exec(
		`INSERT INTO crashes(run_id, triple, diagnostic, created_at) VALUES(?, ?, ?, ?)`,
		c.RunID, c.Triple, c.Diagnostic, c.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert crash: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	c.ID = id
	return id, nil
}

// ListCrashesByRun returns a run's crashes in insertion order.
func (s *SqlStore) ListCrashesByRun(runID int64) ([]*Crash, error) {
	rows, err := s.db.Query(
		`SELECT id, run_id, triple, diagnostic, created_at FROM crashes
		 WHERE run_id = ? ORDER BY id`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list crashes: %w", err)
	}
	defer rows.Close()

	var crashes []*Crash
	for rows.Next() {
		var c Crash
		if err := rows.Scan(&c.ID, &c.RunID, &c.Triple, &c.Diagnostic, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan crash: %w", err)
		}
		crashes = append(crashes, &c)
	}
	return crashes, rows.Err()
}
