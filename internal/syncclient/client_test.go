package syncclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/screenwatch/screenwatch/internal/api"
	"github.com/screenwatch/screenwatch/internal/usage"
)

func TestUpload_SendsRecordsWithKey(t *testing.T) {
	var gotKey, gotPath, gotContentType string
	var gotBody api.UploadRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-Key")
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		json.NewEncoder(w).Encode(api.UploadResponse{Status: "ok", RecordsReceived: 2, RecordsInserted: 1})
	}))
	defer srv.Close()

	start := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	records := []usage.Record{
		{AppName: "A", DurationSeconds: 100, StartTime: &start},
		{AppName: "B", DurationSeconds: 50},
	}

	// Trailing slash on the URL is normalized away.
	client := New(srv.URL+"/", "secret-key")
	resp, err := client.Upload(context.Background(), records)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if gotPath != "/upload" {
		t.Errorf("path = %s, want /upload", gotPath)
	}
	if gotKey != "secret-key" {
		t.Errorf("X-API-Key = %q", gotKey)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q", gotContentType)
	}
	if len(gotBody.Records) != 2 || gotBody.Records[0].AppName != "A" {
		t.Errorf("body records = %+v", gotBody.Records)
	}
	if resp.RecordsReceived != 2 || resp.RecordsInserted != 1 {
		t.Errorf("response = %+v", resp)
	}
}

func TestUpload_HTTPErrorIncludesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":"invalid API key"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "wrong").Upload(context.Background(), nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrNetwork) {
		t.Fatalf("HTTP rejection must not classify as network failure: %v", err)
	}
	if !strings.Contains(err.Error(), "403") || !strings.Contains(err.Error(), "invalid API key") {
		t.Fatalf("error lacks status/body detail: %v", err)
	}
}

func TestUpload_ConnectionRefusedIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // refuse connections

	_, err := New(srv.URL, "key").Upload(context.Background(), nil)
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("error = %v, want ErrNetwork", err)
	}
}
