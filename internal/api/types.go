// Package api holds the wire types shared by the HTTP server and the sync
// client. Records on the wire reuse the core usage.Record shape.
package api

import "github.com/screenwatch/screenwatch/internal/usage"

type UploadRequest struct {
	Records []usage.Record `json:"records"`
}

type UploadResponse struct {
	Status          string `json:"status"`
	RecordsReceived int    `json:"records_received"`
	RecordsInserted int    `json:"records_inserted"`
}

type WireRecord struct {
	AppName           string  `json:"app_name"`
	DurationSeconds   float64 `json:"duration_seconds"`
	DurationFormatted string  `json:"duration_formatted"`
	StartTime         *string `json:"start_time"`
	EndTime           *string `json:"end_time"`
}

type UsageResponse struct {
	RecordCount int          `json:"record_count"`
	StartDate   *string      `json:"start_date"`
	EndDate     *string      `json:"end_date"`
	Records     []WireRecord `json:"records"`
}

type AppSummary struct {
	AppName                string  `json:"app_name"`
	TotalDurationSeconds   float64 `json:"total_duration_seconds"`
	TotalDurationFormatted string  `json:"total_duration_formatted"`
}

type SummaryResponse struct {
	TotalDurationSeconds   float64      `json:"total_duration_seconds"`
	TotalDurationFormatted string       `json:"total_duration_formatted"`
	StartDate              *string      `json:"start_date"`
	EndDate                *string      `json:"end_date"`
	AppCount               int          `json:"app_count"`
	Apps                   []AppSummary `json:"apps"`
}

type DailyBreakdown struct {
	Date                   string       `json:"date"`
	TotalDurationSeconds   float64      `json:"total_duration_seconds"`
	TotalDurationFormatted string       `json:"total_duration_formatted"`
	Apps                   []AppSummary `json:"apps"`
}

type DailyResponse struct {
	StartDate *string          `json:"start_date"`
	EndDate   *string          `json:"end_date"`
	Days      []DailyBreakdown `json:"days"`
}

type HealthResponse struct {
	Status       string `json:"status"`
	SourceExists bool   `json:"source_exists"`
	SourcePath   string `json:"source_path"`
	StoreExists  bool   `json:"store_exists"`
	StoreRecords int64  `json:"store_records"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Hint  string `json:"hint,omitempty"`
}
