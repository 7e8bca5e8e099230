package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	ExplorerURL            string
	ExplorerRetryMax       int
	ExplorerRetryBaseDelay time.Duration
	RequestTimeout         time.Duration
	HTTPPort               string
	OpenAIAPIKey           string
	OpenAIModel            string
	TagsDataset            string
	WatchChainID           string
	WatchAddresses         []string
	ReportWorkerInterval   time.Duration
	XLSXOutput             string
	SpreadsheetID          string
	GoogleCredentialsJSON  string
	AdminAPIKey            string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first when present.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		ExplorerURL:            envOrDefault("EXPLORER_URL", "http://127.0.0.1:8000"),
		ExplorerRetryMax:       envOrDefaultInt("EXPLORER_RETRY_MAX", 3),
		ExplorerRetryBaseDelay: envOrDefaultDuration("EXPLORER_RETRY_BASE_DELAY", 2*time.Second),
		RequestTimeout:         envOrDefaultDuration("REQUEST_TIMEOUT", 20*time.Second),
		HTTPPort:               envOrDefault("HTTP_PORT", "5050"),
		OpenAIAPIKey:           envOrDefaultWarn("OPENAI_API_KEY", ""),
		OpenAIModel:            envOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		TagsDataset:            envOrDefault("TAGS_DATASET", "./analysis_results.jsonl"),
		WatchChainID:           envOrDefault("WATCH_CHAIN_ID", "8453"),
		WatchAddresses:         envList("WATCH_ADDRESSES"),
		ReportWorkerInterval:   envOrDefaultDuration("REPORT_WORKER_INTERVAL", 24*time.Hour),
		XLSXOutput:             envOrDefault("XLSX_OUTPUT", "reports.xlsx"),
		SpreadsheetID:          envOrDefault("SPREADSHEET_ID", ""),
		GoogleCredentialsJSON:  envOrDefault("GOOGLE_CREDENTIALS_JSON", ""),
		AdminAPIKey:            envOrDefault("ADMIN_API_KEY", ""),
	}
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

func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
