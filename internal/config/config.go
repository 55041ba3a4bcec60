package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	DBPath          string
	FilesBaseDir    string
	APIPort         string
	LogLevel        slog.Level
	LogFormat       string
	MaxArchiveDepth int
	MaxArchiveBytes int64
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates numeric fields.
// If a .env file exists in the current directory or project root, it will be loaded
// automatically. Environment variables already set take precedence over .env values.
func Load() (*Config, error) {
	_ = godotenv.Load() // Try current directory

	// Walk up to find a .env next to go.mod, in case we run from a subdirectory.
	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ {
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	cfg := &Config{
		DBPath:       getEnv("DB_PATH", "./data/schedulemanager.db"),
		FilesBaseDir: getEnv("FILES_BASE_DIR", "./data/uploads"),
		APIPort:      getEnv("API_PORT", "9000"),
		LogFormat:    getEnv("LOG_FORMAT", "text"),
	}

	level, err := parseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	depth, err := getEnvInt("MAX_ARCHIVE_DEPTH", 5)
	if err != nil {
		return nil, err
	}
	if depth <= 0 {
		return nil, fmt.Errorf("MAX_ARCHIVE_DEPTH must be greater than 0")
	}
	cfg.MaxArchiveDepth = depth

	budget, err := getEnvInt64("MAX_ARCHIVE_BYTES", 256<<20)
	if err != nil {
		return nil, err
	}
	if budget <= 0 {
		return nil, fmt.Errorf("MAX_ARCHIVE_BYTES must be greater than 0")
	}
	cfg.MaxArchiveBytes = budget

	// Create data directories up front so sqlite and the file store can open.
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := os.MkdirAll(cfg.FilesBaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create files directory: %w", err)
	}

	return cfg, nil
}

func parseLogLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("LOG_LEVEL %q is not one of debug, info, warn, error", raw)
	}
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return v, nil
}

func getEnvInt64(key string, defaultValue int64) (int64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return v, nil
}
