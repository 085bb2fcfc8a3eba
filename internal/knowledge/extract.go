package knowledge

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/screenwatch/screenwatch/internal/usage"
)

// Extractor runs the app-usage query against a snapshot of knowledgeC.db.
// It always opens the snapshot read-only; the original file is never touched.
type Extractor struct {
	dbPath string
}

// NewExtractor takes the path to a snapshot's primary database file,
// typically Snapshot.DBPath.
func NewExtractor(dbPath string) *Extractor {
	return &Extractor{dbPath: dbPath}
}

// Usage returns all /app/usage sessions, newest first. Bounds are inclusive:
// start filters on the session's start timestamp, end on its end timestamp,
// both converted to Core Data time for the query. The full result set is
// materialized in memory, which is fine for a single device's history.
func (e *Extractor) Usage(ctx context.Context, start, end *time.Time) ([]usage.Record, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", e.dbPath))
	if err != nil {
		return nil, fmt.Errorf("knowledge: %w: open snapshot: %v", ErrDatabase, err)
	}
	defer db.Close()

	query := `
		SELECT
			ZVALUESTRING,
			COALESCE(ZENDDATE - ZSTARTDATE, 0),
			ZSTARTDATE,
			ZENDDATE
		FROM ZOBJECT
		WHERE ZSTREAMNAME = '/app/usage'
			AND ZVALUESTRING IS NOT NULL`

	var args []any
	if start != nil {
		query += ` AND ZSTARTDATE >= ?`
		args = append(args, ToAppleTime(*start))
	}
	if end != nil {
		query += ` AND ZENDDATE <= ?`
		args = append(args, ToAppleTime(*end))
	}
	query += ` ORDER BY ZSTARTDATE DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("knowledge: %w: query app usage: %v", ErrDatabase, err)
	}
	defer rows.Close()

	var records []usage.Record
	for rows.Next() {
		var (
			appName  string
			duration float64
			startTS  sql.NullFloat64
			endTS    sql.NullFloat64
		)
		if err := rows.Scan(&appName, &duration, &startTS, &endTS); err != nil {
			return nil, fmt.Errorf("knowledge: %w: scan usage row: %v", ErrDatabase, err)
		}
		records = append(records, usage.Record{
			AppName:         appName,
			DurationSeconds: duration,
			StartTime:       timeFromAppleColumn(startTS),
			EndTime:         timeFromAppleColumn(endTS),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("knowledge: %w: read usage rows: %v", ErrDatabase, err)
	}
	return records, nil
}

func timeFromAppleColumn(v sql.NullFloat64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := FromAppleTime(v.Float64)
	return &t
}
