// Package ledger keeps a history of recycle runs in SQLite.
//
// Store implements recycle.Recorder: every finished report, including failed
// and dry runs, becomes one row in runs plus one row per output in run_yields.
// Either SQLite driver may back the store; "sqlite" (modernc.org/sqlite) needs
// no cgo, "sqlite3" (github.com/mattn/go-sqlite3) does.
//
// Pruner and Scheduler bound the history by age and count, on demand or on a
// cron schedule.
package ledger
