package knowledge

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// buildSourceDB creates a minimal knowledgeC.db shaped fixture.
func buildSourceDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "knowledgeC.db")
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open fixture db: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE ZOBJECT (
		Z_PK INTEGER PRIMARY KEY,
		ZSTREAMNAME TEXT,
		ZVALUESTRING TEXT,
		ZSTARTDATE REAL,
		ZENDDATE REAL
	)`); err != nil {
		t.Fatalf("create ZOBJECT: %v", err)
	}
	return path
}

func insertEvent(t *testing.T, path, stream string, value any, start, end any) {
	t.Helper()
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open fixture db: %v", err)
	}
	defer db.Close()
	if _, err := db.Exec(
		`INSERT INTO ZOBJECT (ZSTREAMNAME, ZVALUESTRING, ZSTARTDATE, ZENDDATE) VALUES (?, ?, ?, ?)`,
		stream, value, start, end,
	); err != nil {
		t.Fatalf("insert event: %v", err)
	}
}

func TestExtractorUsage_FiltersAndOrders(t *testing.T) {
	path := buildSourceDB(t)

	// Three app sessions at t=1000, 2000, 3000 (Apple time), plus noise rows.
	insertEvent(t, path, "/app/usage", "com.apple.Safari", 1000.0, 1100.0)
	insertEvent(t, path, "/app/usage", "com.apple.Mail", 2000.0, 2050.0)
	insertEvent(t, path, "/app/usage", "com.apple.Safari", 3000.0, 3300.0)
	insertEvent(t, path, "/display/isBacklit", "ignored", 1500.0, 1600.0)
	insertEvent(t, path, "/app/usage", nil, 2500.0, 2600.0)

	records, err := NewExtractor(path).Usage(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("Usage: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}

	// Newest first.
	wantApps := []string{"com.apple.Safari", "com.apple.Mail", "com.apple.Safari"}
	wantDurations := []float64{300, 50, 100}
	for i := range records {
		if records[i].AppName != wantApps[i] {
			t.Errorf("record[%d].AppName = %s, want %s", i, records[i].AppName, wantApps[i])
		}
		if records[i].DurationSeconds != wantDurations[i] {
			t.Errorf("record[%d].DurationSeconds = %v, want %v", i, records[i].DurationSeconds, wantDurations[i])
		}
	}

	wantStart := FromAppleTime(3000)
	if records[0].StartTime == nil || !records[0].StartTime.Equal(wantStart) {
		t.Fatalf("record[0].StartTime = %v, want %v", records[0].StartTime, wantStart)
	}
}

func TestExtractorUsage_WindowBounds(t *testing.T) {
	path := buildSourceDB(t)
	insertEvent(t, path, "/app/usage", "A", 1000.0, 1100.0)
	insertEvent(t, path, "/app/usage", "B", 2000.0, 2100.0)
	insertEvent(t, path, "/app/usage", "C", 3000.0, 3100.0)

	start := FromAppleTime(1500)
	end := FromAppleTime(2500)
	records, err := NewExtractor(path).Usage(context.Background(), &start, &end)
	if err != nil {
		t.Fatalf("Usage: %v", err)
	}
	if len(records) != 1 || records[0].AppName != "B" {
		t.Fatalf("windowed records = %+v, want just B", records)
	}
}

func TestExtractorUsage_NullEndDefaultsDurationToZero(t *testing.T) {
	path := buildSourceDB(t)
	insertEvent(t, path, "/app/usage", "A", 1000.0, nil)

	records, err := NewExtractor(path).Usage(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("Usage: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].DurationSeconds != 0 {
		t.Fatalf("duration = %v, want 0", records[0].DurationSeconds)
	}
	if records[0].EndTime != nil {
		t.Fatalf("EndTime = %v, want nil", records[0].EndTime)
	}
}

func TestExtractorUsage_MalformedDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.db")
	if err := os.WriteFile(path, []byte("this is not a sqlite file at all"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	_, err := NewExtractor(path).Usage(context.Background(), nil, nil)
	if !errors.Is(err, ErrDatabase) {
		t.Fatalf("error = %v, want ErrDatabase", err)
	}
	if errors.Is(err, ErrPermissionDenied) || errors.Is(err, ErrNotFound) {
		t.Fatalf("database error must not classify as access error: %v", err)
	}
}
