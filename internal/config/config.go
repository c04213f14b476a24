package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds runtime configuration, read from environment variables.
type Config struct {
	// Backend
	APIBaseURL string
	APIToken   string

	// Timers
	SnapshotInterval time.Duration
	ProgressInterval time.Duration
	RequestTimeout   time.Duration

	// Progress poll fan-out cap per tick
	ProgressBatchSize int

	// Logging
	LogFile  string
	LogLevel slog.Level
}

func Load() Config {
	return Config{
		APIBaseURL: strings.TrimRight(getEnv("JOBDECK_API_URL", "http://localhost:8080"), "/"),
		APIToken:   os.Getenv("JOBDECK_TOKEN"),

		SnapshotInterval: getDuration("JOBDECK_REFRESH_INTERVAL", 5*time.Second),
		ProgressInterval: getDuration("JOBDECK_PROGRESS_INTERVAL", 5*time.Second),
		RequestTimeout:   getDuration("JOBDECK_REQUEST_TIMEOUT", 10*time.Second),

		ProgressBatchSize: 25,

		LogFile:  getEnv("JOBDECK_LOG_FILE", filepath.Join(os.TempDir(), "jobdeck.log")),
		LogLevel: parseLogLevel(getEnv("JOBDECK_LOG_LEVEL", "INFO")),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
