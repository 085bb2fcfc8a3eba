// Package export serializes usage records and aggregates to the two external
// representations. Field names and order are a compatibility contract with
// downstream consumers; changing them breaks existing imports.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/samber/lo"

	"github.com/screenwatch/screenwatch/internal/usage"
)

// detailedRecord is the detailed JSON shape. Timestamps serialize to ISO-8601
// or null.
type detailedRecord struct {
	AppName         string     `json:"app_name"`
	DurationSeconds float64    `json:"duration_seconds"`
	StartTime       *time.Time `json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
}

// summaryRecord is the summary JSON shape.
type summaryRecord struct {
	AppName                string  `json:"app_name"`
	TotalDurationSeconds   float64 `json:"total_duration_seconds"`
	TotalDurationFormatted string  `json:"total_duration_formatted"`
}

// CSV writes detailed per-session rows with the fixed header. Absent
// timestamps render as empty fields.
func CSV(w io.Writer, records []usage.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"app_name", "duration_seconds", "start_time", "end_time"}); err != nil {
		return fmt.Errorf("export: write csv header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.AppName,
			formatSeconds(r.DurationSeconds),
			isoOrEmpty(r.StartTime),
			isoOrEmpty(r.EndTime),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("export: write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("export: flush csv: %w", err)
	}
	return nil
}

// CSVSummary writes per-app aggregate rows with the fixed summary header.
func CSVSummary(w io.Writer, totals []usage.AppTotal) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"app_name", "total_duration_seconds", "total_duration_formatted"}); err != nil {
		return fmt.Errorf("export: write csv header: %w", err)
	}
	for _, a := range totals {
		row := []string{
			a.AppName,
			formatSeconds(a.TotalDurationSeconds),
			usage.FormatDuration(a.TotalDurationSeconds),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("export: write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("export: flush csv: %w", err)
	}
	return nil
}

// JSON writes the detailed document: an array of session objects with
// 2-space indentation.
func JSON(w io.Writer, records []usage.Record) error {
	out := lo.Map(records, func(r usage.Record, _ int) detailedRecord {
		return detailedRecord{
			AppName:         r.AppName,
			DurationSeconds: r.DurationSeconds,
			StartTime:       r.StartTime,
			EndTime:         r.EndTime,
		}
	})
	return writeIndented(w, out)
}

// JSONSummary writes the summary document: an array of per-app aggregates.
func JSONSummary(w io.Writer, totals []usage.AppTotal) error {
	out := lo.Map(totals, func(a usage.AppTotal, _ int) summaryRecord {
		return summaryRecord{
			AppName:                a.AppName,
			TotalDurationSeconds:   a.TotalDurationSeconds,
			TotalDurationFormatted: usage.FormatDuration(a.TotalDurationSeconds),
		}
	})
	return writeIndented(w, out)
}

func writeIndented(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("export: encode json: %w", err)
	}
	return nil
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func isoOrEmpty(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
