package syncstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/screenwatch/screenwatch/internal/usage"
)

// timeLayout is the persisted textual timestamp form. RFC3339Nano keeps the
// triple (app_name, start_time, end_time) byte-stable across re-uploads of
// the same source data, which is what the unique constraint keys on.
//
// Window bounds and ORDER BY compare this text lexicographically, which only
// tracks chronological order while every stored timestamp carries the same
// UTC offset. All records come from one machine's Screen Time database, so
// that holds; mixing offsets would need a normalization pass first.
const timeLayout = time.RFC3339Nano

// Store is the durable server-side record store. Inserts are idempotent per
// (app_name, start_time, end_time); duplicates are silently ignored.
type Store struct {
	db *sql.DB
}

// Open creates the parent directory and database file if missing, applies the
// connection pragmas, and ensures the schema. Safe to call on an existing
// store.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("syncstore: creating store dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("syncstore: opening store: %w", err)
	}
	if err := configureConnection(db); err != nil {
		db.Close()
		return nil, err
	}

	store := NewStore(db)
	if err := store.Init(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Init creates the table and index if absent. Repeated calls are no-ops.
func (s *Store) Init(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS usage_records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			app_name TEXT NOT NULL,
			duration_seconds REAL NOT NULL,
			start_time TEXT NOT NULL,
			end_time TEXT NOT NULL,
			UNIQUE(app_name, start_time, end_time)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_usage_records_start_time ON usage_records(start_time);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("syncstore: init schema: %w", err)
		}
	}
	return nil
}

// Insert writes records and returns how many caused a net-new row. Duplicate
// triples are skipped by the unique constraint itself (INSERT OR IGNORE), so
// concurrent uploads of the same window cannot race a check-then-insert.
func (s *Store) Insert(ctx context.Context, records []usage.Record) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("syncstore: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO usage_records (app_name, duration_seconds, start_time, end_time)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("syncstore: prepare insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for _, r := range records {
		res, err := stmt.ExecContext(ctx,
			r.AppName,
			r.DurationSeconds,
			timeText(r.StartTime),
			timeText(r.EndTime),
		)
		if err != nil {
			return 0, fmt.Errorf("syncstore: insert record: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("syncstore: rows affected: %w", err)
		}
		inserted += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("syncstore: commit tx: %w", err)
	}
	return inserted, nil
}

// Query returns stored records, newest first, optionally bounded by start and
// end (inclusive). Timestamps are reconstituted from their persisted text.
func (s *Store) Query(ctx context.Context, start, end *time.Time) ([]usage.Record, error) {
	query := `
		SELECT app_name, duration_seconds, start_time, end_time
		FROM usage_records
		WHERE 1=1`

	var args []any
	if start != nil {
		query += ` AND start_time >= ?`
		args = append(args, start.Format(timeLayout))
	}
	if end != nil {
		query += ` AND end_time <= ? AND end_time != ''`
		args = append(args, end.Format(timeLayout))
	}
	query += ` ORDER BY start_time DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("syncstore: query records: %w", err)
	}
	defer rows.Close()

	var records []usage.Record
	for rows.Next() {
		var (
			appName   string
			duration  float64
			startText string
			endText   string
		)
		if err := rows.Scan(&appName, &duration, &startText, &endText); err != nil {
			return nil, fmt.Errorf("syncstore: scan record: %w", err)
		}
		records = append(records, usage.Record{
			AppName:         appName,
			DurationSeconds: duration,
			StartTime:       parseTimeText(startText),
			EndTime:         parseTimeText(endText),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("syncstore: read records: %w", err)
	}
	return records, nil
}

// Count returns the total number of stored records.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM usage_records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("syncstore: count records: %w", err)
	}
	return n, nil
}

func configureConnection(db *sql.DB) error {
	if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		return fmt.Errorf("syncstore: set journal_mode WAL: %w", err)
	}
	if _, err := db.Exec(`PRAGMA synchronous = NORMAL;`); err != nil {
		return fmt.Errorf("syncstore: set synchronous NORMAL: %w", err)
	}
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000;`); err != nil {
		return fmt.Errorf("syncstore: set busy_timeout: %w", err)
	}
	return nil
}

// timeText stores absent timestamps as the empty string rather than NULL.
// SQLite treats NULLs as distinct inside a unique constraint, which would let
// malformed records with missing times duplicate on re-upload.
func timeText(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(timeLayout)
}

func parseTimeText(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return nil
	}
	return &t
}
