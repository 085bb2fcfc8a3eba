package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/screenwatch/screenwatch/internal/knowledge"
)

// Config is the client-side sync configuration persisted under ~/.config.
// Flags and environment variables override whatever is stored here.
type Config struct {
	APIURL string `json:"api_url,omitempty"`
	APIKey string `json:"api_key,omitempty"`

	// SourceDBPath overrides the default knowledgeC.db location.
	SourceDBPath string `json:"source_db_path,omitempty"`
}

func ConfigDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "screenwatch")
}

func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.json")
}

func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom returns a zero config when the file does not exist yet.
func LoadFrom(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// saveMu guards read-modify-write cycles on the config file.
var saveMu sync.Mutex

func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

func SaveTo(path string, cfg Config) error {
	saveMu.Lock()
	defer saveMu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: creating config dir: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("config: encoding config: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("config: writing %s: %w", path, err)
	}
	return nil
}

// Server holds the server-side settings, resolved from environment variables
// with flag overrides applied by the serve command.
type Server struct {
	ListenAddr   string
	APIKey       string
	StoreDir     string
	SourceDBPath string
}

func ServerFromEnv() Server {
	srv := Server{
		ListenAddr:   os.Getenv("SCREENWATCH_LISTEN"),
		APIKey:       os.Getenv("SCREENWATCH_API_KEY"),
		StoreDir:     os.Getenv("SCREENWATCH_STORE_DIR"),
		SourceDBPath: os.Getenv("SCREENWATCH_SOURCE_DB"),
	}
	if srv.ListenAddr == "" {
		srv.ListenAddr = ":8000"
	}
	if srv.StoreDir == "" {
		home, _ := os.UserHomeDir()
		srv.StoreDir = filepath.Join(home, ".local", "share", "screenwatch")
	}
	// The live database is the primary source by default; serving purely
	// from the sync store requires the source to classify as unavailable,
	// not an empty path.
	if srv.SourceDBPath == "" {
		srv.SourceDBPath = knowledge.DefaultSourcePath()
	}
	return srv
}

// StorePath is the sync store database file inside StoreDir.
func (s Server) StorePath() string {
	return filepath.Join(s.StoreDir, "screenwatch.db")
}
