package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // cgo SQLite driver, registered as "sqlite3"
	_ "modernc.org/sqlite"          // pure-Go SQLite driver, registered as "sqlite"

	"fastrecycle-hq/salvage/pkg/aggregate"
	"fastrecycle-hq/salvage/pkg/recycle"
)

// Drivers accepted by Config.Driver.
const (
	DriverPureGo = "sqlite"
	DriverCgo    = "sqlite3"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("run not found")

// Config contains configuration for the ledger database.
type Config struct {
	// Path is the database file path, or ":memory:".
	Path string

	// Driver selects the SQLite driver: "sqlite" (pure Go) or "sqlite3" (cgo).
	// Default: "sqlite"
	Driver string

	// WALMode enables Write-Ahead Logging.
	// Default: true
	WALMode bool

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultConfig returns the default ledger configuration.
func DefaultConfig() *Config {
	return &Config{
		Path:        "salvage.db",
		Driver:      DriverPureGo,
		WALMode:     true,
		BusyTimeout: 5 * time.Second,
	}
}

// Run is one recorded recycle run.
type Run struct {
	ID           string                  `json:"id"`
	Target       string                  `json:"target"`
	Outcome      recycle.Outcome         `json:"outcome"`
	DryRun       bool                    `json:"dry_run,omitempty"`
	Error        string                  `json:"error,omitempty"`
	StartedAt    time.Time               `json:"started_at"`
	Duration     time.Duration           `json:"duration_ns"`
	RulesVersion string                  `json:"rules_version,omitempty"`
	Documents    []string                `json:"documents,omitempty"`
	Dropped      int                     `json:"dropped"`
	Consumed     []aggregate.Consumption `json:"consumed,omitempty"`
	Yields       aggregate.YieldMap      `json:"yields,omitempty"`
}

// ListOptions filters ListRuns.
type ListOptions struct {
	// Target restricts results to one container name.
	Target string

	// Since excludes runs started before it.
	Since time.Time

	// Limit caps the number of runs (0 means 50).
	Limit int
}

// Store persists run reports in SQLite.
type Store struct {
	db     *sql.DB
	config *Config
	mu     sync.RWMutex
	logger *slog.Logger
}

// Open opens or creates the ledger database and its schema.
func Open(config *Config, logger *slog.Logger) (*Store, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Path == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	driver := config.Driver
	if driver == "" {
		driver = DriverPureGo
	}
	if driver != DriverPureGo && driver != DriverCgo {
		return nil, fmt.Errorf("unknown sqlite driver %q", driver)
	}
	if config.BusyTimeout == 0 {
		config.BusyTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "ledger.store")

	db, err := sql.Open(driver, config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports a single writer; one connection also keeps
	// ":memory:" databases alive for the life of the store.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{db: db, config: config, logger: logger}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("ledger opened", "path", config.Path, "driver", driver, "wal_mode", config.WALMode)
	return s, nil
}

func (s *Store) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return fmt.Errorf("failed to enable WAL: %w", err)
		}
	}
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", s.config.BusyTimeout.Milliseconds())); err != nil {
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if _, err := s.db.Exec(Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	var version int
	if err := s.db.QueryRow(GetSchemaVersion).Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if version != SchemaVersion {
		return fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version)
	}
	return nil
}

// RecordRun implements recycle.Recorder. Runs that ended before reading any
// rules are stored too, so the ledger shows every attempt.
func (s *Store) RecordRun(ctx context.Context, report *recycle.Report) error {
	if report == nil {
		return fmt.Errorf("report cannot be nil")
	}
	if report.RunID == "" {
		return fmt.Errorf("run id cannot be empty")
	}

	documents, err := json.Marshal(report.Documents)
	if err != nil {
		return fmt.Errorf("failed to marshal documents: %w", err)
	}
	consumed, err := json.Marshal(report.Consumed)
	if err != nil {
		return fmt.Errorf("failed to marshal consumed items: %w", err)
	}

	var errorVal interface{}
	if report.Error != "" {
		errorVal = report.Error
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, target, outcome, dry_run, error, started_at, duration_ms, rules_version, documents, consumed, dropped)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		report.RunID, report.Target, string(report.Outcome), report.DryRun, errorVal,
		report.StartedAt.UnixNano(), report.Duration.Milliseconds(), report.RulesVersion,
		string(documents), string(consumed), len(report.Dropped),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, target := range report.Yields.Targets() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_yields (run_id, target, quantity) VALUES (?, ?, ?)`,
			report.RunID, target, report.Yields[target],
		); err != nil {
			return fmt.Errorf("failed to insert yield: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// GetRun returns one run with its yields.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs, err := s.queryRuns(ctx, `WHERE id = ?`, []interface{}{id}, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return runs[0], nil
}

// ListRuns returns runs newest first.
func (s *Store) ListRuns(ctx context.Context, opts ListOptions) ([]*Run, error) {
	var (
		clauses []string
		args    []interface{}
	)
	if opts.Target != "" {
		clauses = append(clauses, "target = ?")
		args = append(args, opts.Target)
	}
	if !opts.Since.IsZero() {
		clauses = append(clauses, "started_at >= ?")
		args = append(args, opts.Since.UnixNano())
	}
	where := ""
	if len(clauses) > 0 {
		where = "WHERE " + strings.Join(clauses, " AND ")
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryRuns(ctx, where, args, limit)
}

func (s *Store) queryRuns(ctx context.Context, where string, args []interface{}, limit int) ([]*Run, error) {
	query := `
		SELECT id, target, outcome, dry_run, error, started_at, duration_ms, rules_version, documents, consumed, dropped
		FROM runs ` + where + `
		ORDER BY started_at DESC, id
		LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, append(args, limit)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var (
			run          Run
			outcome      string
			errorVal     sql.NullString
			rulesVersion sql.NullString
			documents    sql.NullString
			consumed     sql.NullString
			startedAt    int64
			durationMs   int64
		)
		if err := rows.Scan(&run.ID, &run.Target, &outcome, &run.DryRun, &errorVal, &startedAt,
			&durationMs, &rulesVersion, &documents, &consumed, &run.Dropped); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.Outcome = recycle.Outcome(outcome)
		run.Error = errorVal.String
		run.StartedAt = time.Unix(0, startedAt)
		run.Duration = time.Duration(durationMs) * time.Millisecond
		run.RulesVersion = rulesVersion.String
		if documents.Valid && documents.String != "" {
			if err := json.Unmarshal([]byte(documents.String), &run.Documents); err != nil {
				return nil, fmt.Errorf("failed to unmarshal documents: %w", err)
			}
		}
		if consumed.Valid && consumed.String != "" {
			if err := json.Unmarshal([]byte(consumed.String), &run.Consumed); err != nil {
				return nil, fmt.Errorf("failed to unmarshal consumed items: %w", err)
			}
		}
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	rows.Close()

	for _, run := range runs {
		yields, err := s.yields(ctx, run.ID)
		if err != nil {
			return nil, err
		}
		run.Yields = yields
	}
	return runs, nil
}

func (s *Store) yields(ctx context.Context, runID string) (aggregate.YieldMap, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT target, quantity FROM run_yields WHERE run_id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query yields: %w", err)
	}
	defer rows.Close()

	yields := aggregate.YieldMap{}
	for rows.Next() {
		var (
			target   string
			quantity int64
		)
		if err := rows.Scan(&target, &quantity); err != nil {
			return nil, fmt.Errorf("failed to scan yield: %w", err)
		}
		yields[target] = quantity
	}
	return yields, rows.Err()
}

// YieldTotal is the quantity of one output produced across runs.
type YieldTotal struct {
	Target   string `json:"target"`
	Quantity int64  `json:"quantity"`
	Runs     int    `json:"runs"`
}

// Totals sums the yields of applied runs started at or after since, largest first.
func (s *Store) Totals(ctx context.Context, since time.Time) ([]YieldTotal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT y.target, SUM(y.quantity), COUNT(DISTINCT y.run_id)
		FROM run_yields y JOIN runs r ON r.id = y.run_id
		WHERE r.started_at >= ? AND r.dry_run = 0 AND r.outcome = ?
		GROUP BY y.target
	`, since.UnixNano(), string(recycle.OutcomeCompleted))
	if err != nil {
		return nil, fmt.Errorf("failed to query totals: %w", err)
	}
	defer rows.Close()

	var totals []YieldTotal
	for rows.Next() {
		var t YieldTotal
		if err := rows.Scan(&t.Target, &t.Quantity, &t.Runs); err != nil {
			return nil, fmt.Errorf("failed to scan total: %w", err)
		}
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Quantity != totals[j].Quantity {
			return totals[i].Quantity > totals[j].Quantity
		}
		return totals[i].Target < totals[j].Target
	})
	return totals, nil
}

// Prune deletes runs started before cutoff and returns how many were removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.deleteRuns(ctx, `started_at < ?`, cutoff.UnixNano())
}

// Count returns the number of recorded runs.
func (s *Store) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return n, nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ledger unreachable: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Trim keeps the newest keep runs and deletes the rest.
func (s *Store) Trim(ctx context.Context, keep int64) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}
	return s.deleteRuns(ctx,
		`id NOT IN (SELECT id FROM runs ORDER BY started_at DESC, id LIMIT ?)`, keep)
}

// deleteRuns removes the runs matching where together with their yields.
func (s *Store) deleteRuns(ctx context.Context, where string, args ...interface{}) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM run_yields WHERE run_id IN (SELECT id FROM runs WHERE `+where+`)`, args...); err != nil {
		return 0, fmt.Errorf("failed to delete yields: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE `+where, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted runs: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit deletion: %w", err)
	}
	return n, nil
}
