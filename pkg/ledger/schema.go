package ledger

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema creates the ledger tables.
const Schema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    target TEXT NOT NULL,
    outcome TEXT NOT NULL,
    dry_run BOOLEAN NOT NULL DEFAULT 0,
    error TEXT,
    started_at INTEGER NOT NULL,
    duration_ms INTEGER NOT NULL,
    rules_version TEXT,
    documents TEXT,
    consumed TEXT,
    dropped INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS run_yields (
    run_id TEXT NOT NULL,
    target TEXT NOT NULL,
    quantity INTEGER NOT NULL,
    PRIMARY KEY (run_id, target)
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
CREATE INDEX IF NOT EXISTS idx_runs_target ON runs(target);
CREATE INDEX IF NOT EXISTS idx_run_yields_target ON run_yields(target);
`

// InsertSchemaVersion records the schema version.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion reads the newest schema version.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`
