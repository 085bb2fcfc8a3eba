package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/screenwatch/screenwatch/internal/knowledge"
)

func TestLoadFrom_MissingFileIsZeroConfig(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg != (Config{}) {
		t.Fatalf("cfg = %+v, want zero", cfg)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	want := Config{
		APIURL:       "https://screenwatch.example.com",
		APIKey:       "abc123",
		SourceDBPath: "/tmp/knowledgeC.db",
	}

	if err := SaveTo(path, want); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if got != want {
		t.Fatalf("round trip = %+v, want %+v", got, want)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("config mode = %v, want 0600 (holds the API key)", info.Mode().Perm())
	}
}

func TestLoadFrom_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestServerFromEnv_Defaults(t *testing.T) {
	t.Setenv("SCREENWATCH_LISTEN", "")
	t.Setenv("SCREENWATCH_API_KEY", "")
	t.Setenv("SCREENWATCH_STORE_DIR", "")
	t.Setenv("SCREENWATCH_SOURCE_DB", "")

	srv := ServerFromEnv()
	if srv.ListenAddr != ":8000" {
		t.Fatalf("ListenAddr = %s, want :8000", srv.ListenAddr)
	}
	if srv.StoreDir == "" {
		t.Fatal("StoreDir default is empty")
	}
	if filepath.Base(srv.StorePath()) != "screenwatch.db" {
		t.Fatalf("StorePath = %s", srv.StorePath())
	}
	if srv.SourceDBPath != knowledge.DefaultSourcePath() {
		t.Fatalf("SourceDBPath = %s, want the live database default", srv.SourceDBPath)
	}
}

func TestServerFromEnv_Overrides(t *testing.T) {
	t.Setenv("SCREENWATCH_LISTEN", "127.0.0.1:9999")
	t.Setenv("SCREENWATCH_API_KEY", "sekrit")
	t.Setenv("SCREENWATCH_STORE_DIR", "/srv/screenwatch")
	t.Setenv("SCREENWATCH_SOURCE_DB", "/srv/knowledgeC.db")

	srv := ServerFromEnv()
	if srv.ListenAddr != "127.0.0.1:9999" || srv.APIKey != "sekrit" || srv.StoreDir != "/srv/screenwatch" {
		t.Fatalf("srv = %+v", srv)
	}
	if srv.SourceDBPath != "/srv/knowledgeC.db" {
		t.Fatalf("SourceDBPath = %s, want /srv/knowledgeC.db", srv.SourceDBPath)
	}
}
