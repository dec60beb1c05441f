package library

import (
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	EnvDBPath   = "LIBRARY_DB"
	EnvLogLevel = "LIBRARY_LOG_LEVEL"

	DefaultDBPath = "library.db"
)

// Config holds the runtime settings shared by the catalog binaries.
type Config struct {
	DBPath   string
	LogLevel slog.Level
}

// LoadConfig reads settings from a .env file (if any) and the environment.
// Unset or unparsable values fall back to defaults.
func LoadConfig() Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := Config{DBPath: DefaultDBPath, LogLevel: slog.LevelWarn}
	if p := strings.TrimSpace(os.Getenv(EnvDBPath)); p != "" {
		cfg.DBPath = p
	}
	if lvl, ok := ParseLogLevel(os.Getenv(EnvLogLevel)); ok {
		cfg.LogLevel = lvl
	}
	return cfg
}

// ParseLogLevel accepts slog level names ("debug", "info", "warn", "error"),
// case-insensitively.
func ParseLogLevel(s string) (slog.Level, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return 0, false
	}
	return lvl, true
}

// NewLogger builds the stderr text logger used by the command-line tools.
func NewLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
