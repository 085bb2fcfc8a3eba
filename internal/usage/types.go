package usage

import "time"

// Record is a single observed foreground-usage session. Records are built at
// the extraction boundary and never mutated afterwards; the same shape travels
// over the sync wire and through exports.
type Record struct {
	AppName         string     `json:"app_name"`
	DurationSeconds float64    `json:"duration_seconds"`
	StartTime       *time.Time `json:"start_time"` // nil only for malformed source rows
	EndTime         *time.Time `json:"end_time"`
}

// AppTotal is the per-app aggregate over a query window.
type AppTotal struct {
	AppName              string  `json:"app_name"`
	TotalDurationSeconds float64 `json:"total_duration_seconds"`
}

// DayBucket is the per-calendar-day aggregate. Date is midnight in the local
// timezone of the record's start time. TotalDurationSeconds covers every app
// that day; Apps holds only the top-N list.
type DayBucket struct {
	Date                 time.Time  `json:"date"`
	TotalDurationSeconds float64    `json:"total_duration_seconds"`
	Apps                 []AppTotal `json:"apps"`
}
