package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	DatabaseURL          string
	HTTPPort             string
	AdminAPIKey          string
	LogLevel             slog.Level
	BaseCurrency         string
	CatalogCacheTTL      time.Duration
	PriceStaleThreshold  time.Duration
	ReportWorkerInterval time.Duration
	ReportUsers          []string
	RankingLimit         int
	ExportDir            string
	GoogleSheetsID       string
	GoogleCredentials    string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		DatabaseURL:          envOrDefaultWarn("DATABASE_URL", ""),
		HTTPPort:             envOrDefault("HTTP_PORT", "8080"),
		AdminAPIKey:          os.Getenv("ADMIN_API_KEY"),
		LogLevel:             envOrDefaultLevel("LOG_LEVEL", slog.LevelInfo),
		BaseCurrency:         strings.ToUpper(envOrDefault("BASE_CURRENCY", "KRW")),
		CatalogCacheTTL:      envOrDefaultDuration("CATALOG_CACHE_TTL", 5*time.Minute),
		PriceStaleThreshold:  envOrDefaultDuration("PRICE_STALE_THRESHOLD", 48*time.Hour),
		ReportWorkerInterval: envOrDefaultDuration("REPORT_WORKER_INTERVAL", 24*time.Hour),
		ReportUsers:          envList("REPORT_USERS"),
		RankingLimit:         envOrDefaultInt("RANKING_DEFAULT_LIMIT", 10),
		ExportDir:            envOrDefault("EXPORT_DIR", ""),
		GoogleSheetsID:       os.Getenv("GOOGLE_SHEETS_ID"),
		GoogleCredentials:    os.Getenv("GOOGLE_CREDENTIALS_JSON"),
	}
}

// SheetsEnabled reports whether both Google Sheets settings are present.
func (c Config) SheetsEnabled() bool {
	return c.GoogleSheetsID != "" && c.GoogleCredentials != ""
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultWarn(key, defaultVal string) string {
	v := envOrDefault(key, defaultVal)
	if v == "" {
		slog.Warn("required env var not set", "key", key)
	}
	return v
}

func envOrDefaultInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("invalid integer env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return n
	}
	return defaultVal
}

func envOrDefaultDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return d
	}
	return defaultVal
}

func envOrDefaultLevel(key string, defaultVal slog.Level) slog.Level {
	if v := os.Getenv(key); v != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(v)); err != nil {
			slog.Warn("invalid log level env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return level
	}
	return defaultVal
}

// envList splits a comma separated value, dropping blanks.
func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
