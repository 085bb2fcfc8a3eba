package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/screenwatch/screenwatch/internal/usage"
)

func tp(t time.Time) *time.Time { return &t }

func TestCSVSummary_ExactOutput(t *testing.T) {
	totals := []usage.AppTotal{
		{AppName: "A", TotalDurationSeconds: 130},
		{AppName: "B", TotalDurationSeconds: 50},
	}

	var buf bytes.Buffer
	if err := CSVSummary(&buf, totals); err != nil {
		t.Fatalf("CSVSummary: %v", err)
	}

	want := "app_name,total_duration_seconds,total_duration_formatted\n" +
		"A,130,2m10s\n" +
		"B,50,50s\n"
	if buf.String() != want {
		t.Fatalf("CSVSummary output:\n%q\nwant:\n%q", buf.String(), want)
	}
}

func TestCSV_DetailedHeaderAndTimestamps(t *testing.T) {
	start := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	end := start.Add(100 * time.Second)
	records := []usage.Record{
		{AppName: "A", DurationSeconds: 100, StartTime: tp(start), EndTime: tp(end)},
		{AppName: "Broken", DurationSeconds: 0},
	}

	var buf bytes.Buffer
	if err := CSV(&buf, records); err != nil {
		t.Fatalf("CSV: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if lines[0] != "app_name,duration_seconds,start_time,end_time" {
		t.Fatalf("header = %q", lines[0])
	}
	if lines[1] != "A,100,2026-03-02T09:00:00Z,2026-03-02T09:01:40Z" {
		t.Fatalf("row 1 = %q", lines[1])
	}
	if lines[2] != "Broken,0,," {
		t.Fatalf("row 2 = %q (absent timestamps must be empty)", lines[2])
	}
}

func TestJSON_DetailedShape(t *testing.T) {
	start := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	records := []usage.Record{
		{AppName: "A", DurationSeconds: 100, StartTime: tp(start)},
	}

	var buf bytes.Buffer
	if err := JSON(&buf, records); err != nil {
		t.Fatalf("JSON: %v", err)
	}

	// 2-space indentation and explicit null for the absent end time.
	if !strings.Contains(buf.String(), "\n  {\n    \"app_name\": \"A\",") {
		t.Fatalf("output not 2-space indented:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), `"end_time": null`) {
		t.Fatalf("absent end_time must encode as null:\n%s", buf.String())
	}

	var decoded []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(decoded) != 1 || decoded[0]["app_name"] != "A" || decoded[0]["duration_seconds"] != 100.0 {
		t.Fatalf("decoded = %+v", decoded)
	}
}

func TestJSONSummary_Fields(t *testing.T) {
	var buf bytes.Buffer
	if err := JSONSummary(&buf, []usage.AppTotal{{AppName: "A", TotalDurationSeconds: 130}}); err != nil {
		t.Fatalf("JSONSummary: %v", err)
	}

	var decoded []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded[0]["total_duration_formatted"] != "2m10s" {
		t.Fatalf("formatted = %v, want 2m10s", decoded[0]["total_duration_formatted"])
	}
}

func TestJSON_EmptyInput(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, nil); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Fatalf("JSON(nil) = %q, want []", buf.String())
	}
}
