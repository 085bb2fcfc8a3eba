package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/samber/lo"

	"github.com/screenwatch/screenwatch/internal/api"
	"github.com/screenwatch/screenwatch/internal/export"
	"github.com/screenwatch/screenwatch/internal/usage"
)

const dateLayout = "2006-01-02"

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := api.HealthResponse{
		Status:     "ok",
		SourcePath: s.cfg.SourceDBPath,
	}
	if _, err := os.Stat(s.cfg.SourceDBPath); err == nil {
		resp.SourceExists = true
	}
	if _, err := os.Stat(s.cfg.StorePath()); err == nil {
		resp.StoreExists = true
		if n, err := s.store.Count(r.Context()); err == nil {
			resp.StoreRecords = n
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	var req api.UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("decode upload request: %v", err), "")
		return
	}

	inserted, err := s.store.Insert(r.Context(), req.Records)
	if err != nil {
		s.log.Error("upload insert failed", "error", err)
		writeError(w, http.StatusInternalServerError, "store insert failed", "")
		return
	}

	s.log.Info("upload accepted",
		"received", len(req.Records),
		"inserted", inserted,
	)
	writeJSON(w, http.StatusOK, api.UploadResponse{
		Status:          "ok",
		RecordsReceived: len(req.Records),
		RecordsInserted: int(inserted),
	})
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	window, err := parseWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	}
	limit, err := intParam(r, "limit", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	records, err := s.loadRecords(r.Context(), window.start, window.end)
	if err != nil {
		s.respondSourceError(w, err)
		return
	}
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	writeJSON(w, http.StatusOK, api.UsageResponse{
		RecordCount: len(records),
		StartDate:   window.startText(),
		EndDate:     window.endText(),
		Records:     lo.Map(records, func(rec usage.Record, _ int) api.WireRecord { return wireRecord(rec) }),
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	window, err := parseWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	}
	top, err := intParam(r, "top", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	records, err := s.loadRecords(r.Context(), window.start, window.end)
	if err != nil {
		s.respondSourceError(w, err)
		return
	}

	totals := usage.ByApp(records)
	grand := lo.SumBy(totals, func(a usage.AppTotal) float64 { return a.TotalDurationSeconds })
	if top > 0 && len(totals) > top {
		totals = totals[:top]
	}

	writeJSON(w, http.StatusOK, api.SummaryResponse{
		TotalDurationSeconds:   grand,
		TotalDurationFormatted: usage.FormatDuration(grand),
		StartDate:              window.startText(),
		EndDate:                window.endText(),
		AppCount:               len(totals),
		Apps:                   lo.Map(totals, toAppSummary),
	})
}

func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	window, err := parseWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	}
	topApps, err := intParam(r, "top_apps", 10)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	records, err := s.loadRecords(r.Context(), window.start, window.end)
	if err != nil {
		s.respondSourceError(w, err)
		return
	}

	days := usage.ByDay(records, topApps)
	writeJSON(w, http.StatusOK, api.DailyResponse{
		StartDate: window.startText(),
		EndDate:   window.endText(),
		Days: lo.Map(days, func(d usage.DayBucket, _ int) api.DailyBreakdown {
			return api.DailyBreakdown{
				Date:                   d.Date.Format(dateLayout),
				TotalDurationSeconds:   d.TotalDurationSeconds,
				TotalDurationFormatted: usage.FormatDuration(d.TotalDurationSeconds),
				Apps:                   lo.Map(d.Apps, toAppSummary),
			}
		}),
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format != "csv" && format != "json" {
		writeError(w, http.StatusBadRequest, "format must be csv or json", "")
		return
	}
	summary := r.URL.Query().Get("summary") == "true" || r.URL.Query().Get("summary") == "1"

	window, err := parseWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	records, err := s.loadRecords(r.Context(), window.start, window.end)
	if err != nil {
		s.respondSourceError(w, err)
		return
	}

	var buf bytes.Buffer
	switch {
	case summary && format == "csv":
		err = export.CSVSummary(&buf, usage.ByApp(records))
	case summary:
		err = export.JSONSummary(&buf, usage.ByApp(records))
	case format == "csv":
		err = export.CSV(&buf, records)
	default:
		err = export.JSON(&buf, records)
	}
	if err != nil {
		s.log.Error("export encode failed", "error", err)
		writeError(w, http.StatusInternalServerError, "export failed", "")
		return
	}

	contentType := "application/json"
	if format == "csv" {
		contentType = "text/csv"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%s.%s", exportFilename(summary, window), format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) respondSourceError(w http.ResponseWriter, err error) {
	status, hint := sourceStatus(err)
	s.log.Error("query failed", "error", err, "status", status)
	writeError(w, status, err.Error(), hint)
}

func exportFilename(summary bool, window queryWindow) string {
	name := "screenwatch_usage"
	if summary {
		name = "screenwatch_summary"
	}
	if t := window.startText(); t != nil {
		name += "_from_" + *t
	}
	if t := window.endText(); t != nil {
		name += "_to_" + *t
	}
	return name
}

func toAppSummary(a usage.AppTotal, _ int) api.AppSummary {
	return api.AppSummary{
		AppName:                a.AppName,
		TotalDurationSeconds:   a.TotalDurationSeconds,
		TotalDurationFormatted: usage.FormatDuration(a.TotalDurationSeconds),
	}
}

func wireRecord(r usage.Record) api.WireRecord {
	return api.WireRecord{
		AppName:           r.AppName,
		DurationSeconds:   r.DurationSeconds,
		DurationFormatted: usage.FormatDuration(r.DurationSeconds),
		StartTime:         isoText(r.StartTime),
		EndTime:           isoText(r.EndTime),
	}
}

func isoText(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

// queryWindow is the parsed, inclusive [start_date, end_date] bound. The end
// date expands to the last second of that day.
type queryWindow struct {
	start, end         *time.Time
	startDate, endDate string
}

func parseWindow(r *http.Request) (queryWindow, error) {
	var window queryWindow

	if raw := r.URL.Query().Get("start_date"); raw != "" {
		t, err := time.ParseInLocation(dateLayout, raw, time.Local)
		if err != nil {
			return window, fmt.Errorf("invalid start_date %q, use YYYY-MM-DD", raw)
		}
		window.start = &t
		window.startDate = raw
	}
	if raw := r.URL.Query().Get("end_date"); raw != "" {
		t, err := time.ParseInLocation(dateLayout, raw, time.Local)
		if err != nil {
			return window, fmt.Errorf("invalid end_date %q, use YYYY-MM-DD", raw)
		}
		endOfDay := t.AddDate(0, 0, 1).Add(-time.Second)
		window.end = &endOfDay
		window.endDate = raw
	}
	return window, nil
}

func (w queryWindow) startText() *string {
	if w.startDate == "" {
		return nil
	}
	return &w.startDate
}

func (w queryWindow) endText() *string {
	if w.endDate == "" {
		return nil
	}
	return &w.endDate
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return n, nil
}
