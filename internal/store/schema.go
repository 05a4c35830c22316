package store

// schemaVersionV1 is the current schema.
const schemaVersionV1 = 1

// schemaV1 is the run-history DDL.
var schemaV1 = `
CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL);

CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	binary      TEXT NOT NULL,
	toolchain   TEXT,
	jobs        INTEGER NOT NULL,
	started_at  TEXT NOT NULL,
	finished_at TEXT,
	status      TEXT NOT NULL DEFAULT 'running',
	submitted   INTEGER NOT NULL DEFAULT 0,
	valid       INTEGER NOT NULL DEFAULT 0,
	invalid     INTEGER NOT NULL DEFAULT 0,
	crashed     INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS crashes (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id     INTEGER NOT NULL REFERENCES runs(id),
	triple     TEXT NOT NULL,
	diagnostic TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_crashes_run ON crashes(run_id);
`
