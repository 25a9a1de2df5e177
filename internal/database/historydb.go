package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/linkprune/linkprune/internal/report"
)

// HistoryDB stores filtering run history in a SQLite database file.
type HistoryDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file when
	// missing. The history command sets this to false so it can report
	// "no history yet" instead of creating an empty database.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the options used when recording runs.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database under dbDir.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, "linkprune.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("history database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("check history database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("create history database directory: %w", err)
	}

	// modernc.org/sqlite: mode=rw refuses to create a new file,
	// mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	// SQLite supports a single writer; keep the pool at one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create history tables: %w", err)
	}
	return hdb, nil
}

// Close releases the underlying database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

func (h *HistoryDB) createTables() error {
	const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	input         TEXT    NOT NULL,
	started_at    TEXT    NOT NULL,
	elapsed_ns    INTEGER NOT NULL,
	places        INTEGER NOT NULL,
	distinct_urls INTEGER NOT NULL,
	kept          INTEGER NOT NULL,
	dropped       INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS dropped_bookmarks (
	id     INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	url    TEXT    NOT NULL,
	title  TEXT    NOT NULL DEFAULT '',
	reason TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_dropped_run ON dropped_bookmarks(run_id);
`
	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// RunRecord is one stored run, as listed by the history command.
type RunRecord struct {
	ID           int64
	Input        string
	StartedAt    time.Time
	Elapsed      time.Duration
	Places       int
	DistinctURLs int
	Kept         int
	Dropped      int
}

// SaveRun records a completed run and its dropped bookmarks. Returns
// the new run's ID.
func (h *HistoryDB) SaveRun(ctx context.Context, run *report.Run) (int64, error) {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin history transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit.

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (input, started_at, elapsed_ns, places, distinct_urls, kept, dropped)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.Input,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		int64(run.Elapsed),
		run.Places,
		run.DistinctURLs,
		run.Kept,
		run.DropCount,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}

	for _, d := range run.Dropped {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO dropped_bookmarks (run_id, url, title, reason) VALUES (?, ?, ?, ?)`,
			runID, d.URL, d.Title, d.Reason,
		); err != nil {
			return 0, fmt.Errorf("insert dropped bookmark: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit history transaction: %w", err)
	}
	return runID, nil
}

// ListRuns returns the most recent runs, newest first. limit <= 0
// means no limit.
func (h *HistoryDB) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	query := `SELECT id, input, started_at, elapsed_ns, places, distinct_urls, kept, dropped
	          FROM runs ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only cursor.

	var records []RunRecord
	for rows.Next() {
		var (
			rec       RunRecord
			startedAt string
			elapsedNS int64
		)
		if err := rows.Scan(&rec.ID, &rec.Input, &startedAt, &elapsedNS,
			&rec.Places, &rec.DistinctURLs, &rec.Kept, &rec.Dropped); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rec.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			return nil, fmt.Errorf("parse run timestamp: %w", err)
		}
		rec.Elapsed = time.Duration(elapsedNS)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DroppedForRun returns the dropped bookmarks recorded for a run, in
// insertion (tree) order.
func (h *HistoryDB) DroppedForRun(ctx context.Context, runID int64) ([]report.DroppedBookmark, error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT url, title, reason FROM dropped_bookmarks WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query dropped bookmarks: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only cursor.

	var dropped []report.DroppedBookmark
	for rows.Next() {
		var d report.DroppedBookmark
		if err := rows.Scan(&d.URL, &d.Title, &d.Reason); err != nil {
			return nil, fmt.Errorf("scan dropped bookmark: %w", err)
		}
		dropped = append(dropped, d)
	}
	return dropped, rows.Err()
}
