package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kozaktomas/photo-sheet/internal/editor"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// History backends.
const (
	BackendPostgres = "postgres"
	BackendMariaDB  = "mariadb"
	BackendMemory   = "memory"
)

type Config struct {
	Database DatabaseConfig
	MariaDB  MariaDBConfig
	History  HistoryConfig
	Upload   UploadConfig
	Web      WebConfig
	Editor   EditorConfig
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type MariaDBConfig struct {
	DSN          string // e.g. photosheet:photosheet@tcp(mariadb:3306)/photosheet?parseTime=true
	MaxOpenConns int    // shares DATABASE_MAX_OPEN_CONNS
	MaxIdleConns int    // shares DATABASE_MAX_IDLE_CONNS
}

type HistoryConfig struct {
	Backend string // postgres, mariadb or memory
}

type UploadConfig struct {
	Dir string // where uploaded images are stored (default ./uploads)
}

type WebConfig struct {
	Port           int
	Host           string
	SessionSecret  string
	AllowedOrigins []string
}

type EditorConfig struct {
	IdleTimeout time.Duration // sessions untouched for this long are dropped
	Defaults    editor.Settings
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envDuration reads an environment variable as a positive time.Duration.
func envDuration(key string, defaultVal time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

// envList splits a comma-separated environment variable, dropping blanks.
func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// EditorDefaults parses the embedded editor defaults.
func EditorDefaults() (editor.Settings, error) {
	var doc struct {
		Editor editor.Settings `yaml:"editor"`
	}
	if err := yaml.Unmarshal(defaultsYAML, &doc); err != nil {
		return editor.Settings{}, fmt.Errorf("failed to unmarshal embedded defaults.yaml: %w", err)
	}
	if err := doc.Editor.Validate(); err != nil {
		return editor.Settings{}, fmt.Errorf("embedded defaults.yaml: %w", err)
	}
	return doc.Editor, nil
}

// historyBackend picks the configured backend, falling back to whichever
// database is configured and finally to the in-memory store.
func historyBackend(pgURL, mariaDSN string) string {
	switch b := strings.ToLower(os.Getenv("HISTORY_BACKEND")); b {
	case BackendPostgres, BackendMariaDB, BackendMemory:
		return b
	}
	switch {
	case pgURL != "":
		return BackendPostgres
	case mariaDSN != "":
		return BackendMariaDB
	default:
		return BackendMemory
	}
}

func Load() *Config {
	defaults, err := EditorDefaults()
	if err != nil {
		// The file is embedded, so this only fails on a broken build.
		panic(err.Error())
	}

	pgURL := os.Getenv("DATABASE_URL")
	mariaDSN := os.Getenv("MARIADB_DSN")
	maxOpen := envInt("DATABASE_MAX_OPEN_CONNS", 25)
	maxIdle := envInt("DATABASE_MAX_IDLE_CONNS", 5)

	return &Config{
		Database: DatabaseConfig{
			URL:          pgURL,
			MaxOpenConns: maxOpen,
			MaxIdleConns: maxIdle,
		},
		MariaDB: MariaDBConfig{
			DSN:          mariaDSN,
			MaxOpenConns: maxOpen,
			MaxIdleConns: maxIdle,
		},
		History: HistoryConfig{
			Backend: historyBackend(pgURL, mariaDSN),
		},
		Upload: UploadConfig{
			Dir: envString("UPLOAD_DIR", "./uploads"),
		},
		Web: WebConfig{
			Port:           envInt("WEB_PORT", 8080),
			Host:           envString("WEB_HOST", "0.0.0.0"),
			SessionSecret:  os.Getenv("WEB_SESSION_SECRET"),
			AllowedOrigins: envList("WEB_ALLOWED_ORIGINS"),
		},
		Editor: EditorConfig{
			IdleTimeout: envDuration("EDITOR_IDLE_TIMEOUT", 2*time.Hour),
			Defaults:    defaults,
		},
	}
}
