package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port               string
	AllowedOrigins     []string
	RateLimitPerMinute int
	ShutdownTimeout    time.Duration

	// Logging
	LogLevel string

	// Dataset
	DataBackend   string
	DataFile      string
	SQLiteDBPath  string
	HistogramBins int

	// AMQP (optional; exports are disabled without it)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Export target: "google_sheets" needs GoogleSpreadsheetID, "memory"
	// keeps tables in the worker process and drops them on exit.
	ExportTarget             string
	GoogleSpreadsheetID      string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

var (
	validBackends  = []string{"json", "sqlite"}
	validLogLevels = []string{"debug", "info", "warn", "error"}
	validTargets   = []string{"google_sheets", "memory"}
)

func Load() *Config {
	cfg := &Config{
		Port:               getEnv("PORT", "8081"),
		AllowedOrigins:     getEnvList("ALLOWED_ORIGINS", []string{"http://localhost:8501", "http://127.0.0.1:8501"}),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		ShutdownTimeout:    getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),

		DataBackend:   getEnv("DATA_BACKEND", "json"),
		DataFile:      getEnv("DATA_FILE", "./data/calculatorData.json"),
		SQLiteDBPath:  getEnv("SQLITE_DB_PATH", "./data/salary.db"),
		HistogramBins: getEnvInt("HISTOGRAM_BINS", 30),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "salary"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "export_tables"),

		ExportTarget:             getEnv("EXPORT_TARGET", "google_sheets"),
		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", getEnv("GOOGLE_APPLICATION_CREDENTIALS", "")),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if !slices.Contains(validLogLevels, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLogLevels))
	}

	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	switch c.DataBackend {
	case "json":
		if c.DataFile == "" {
			errors = append(errors, "data file path cannot be empty when using json backend")
		} else if info, err := os.Stat(c.DataFile); err != nil {
			errors = append(errors, fmt.Sprintf("data file '%s' is not readable: %v", c.DataFile, err))
		} else if info.IsDir() {
			errors = append(errors, fmt.Sprintf("data file '%s' is a directory", c.DataFile))
		}
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else if _, err := os.Stat(c.SQLiteDBPath); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("SQLite database '%s' does not exist: run 'salaryctl import' first", c.SQLiteDBPath))
		}
	}

	if c.HistogramBins < 1 || c.HistogramBins > 200 {
		errors = append(errors, fmt.Sprintf("invalid histogram bins %d: must be between 1 and 200", c.HistogramBins))
	}

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}

	if c.ShutdownTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid shutdown timeout %v: must be at least 1 second", c.ShutdownTimeout))
	}

	for _, origin := range c.AllowedOrigins {
		if origin == "*" {
			continue
		}
		if u, err := url.Parse(origin); err != nil || u.Scheme == "" || u.Host == "" {
			errors = append(errors, fmt.Sprintf("invalid allowed origin '%s': must be '*' or scheme://host[:port]", origin))
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if !slices.Contains(validTargets, c.ExportTarget) {
		errors = append(errors, fmt.Sprintf("invalid export target '%s': must be one of %v", c.ExportTarget, validTargets))
	}

	if c.GoogleServiceAccountFile != "" && c.GoogleServiceAccountJSON == "" {
		if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// SlogLevel maps LogLevel to a slog.Level, defaulting to Info.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ExportsEnabled reports whether export requests can be queued and have
// somewhere to go: a broker plus a spreadsheet, or the memory target chosen
// explicitly.
func (c *Config) ExportsEnabled() bool {
	return c.ExportsDisabledReason() == ""
}

// ExportsDisabledReason explains why ExportsEnabled is false, or returns "".
func (c *Config) ExportsDisabledReason() string {
	switch {
	case c.AMQPURL == "":
		return "AMQP_URL not set"
	case c.ExportTarget == "google_sheets" && c.GoogleSpreadsheetID == "":
		return "GOOGLE_SPREADSHEET_ID not set"
	}
	return ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
