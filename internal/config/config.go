package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath    string
	OutputDir string
	JobsFile  string

	GoogleCredentialsFile string
	GoogleClientID        string
	GoogleClientSecret    string
	GoogleRedirectURI     string
	GoogleRefreshToken    string

	SheetsRateLimitRPS int
	SheetsTimeoutMs    int

	TimestampISOSentinel bool

	LogLevel  string
	LogFormat string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:    getEnv("DB_PATH", filepath.Join(cwd, "data", "sheetetl.db")),
		OutputDir: getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),
		JobsFile:  getEnv("JOBS_FILE", ""),

		GoogleCredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", ""),
		GoogleClientID:        getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:    getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURI:     getEnv("GOOGLE_REDIRECT_URI", "https://developers.google.com/oauthplayground"),
		GoogleRefreshToken:    getEnv("GOOGLE_REFRESH_TOKEN", ""),

		SheetsRateLimitRPS: getEnvInt("SHEETS_RATE_LIMIT_RPS", 1),
		SheetsTimeoutMs:    getEnvInt("SHEETS_TIMEOUT_MS", 30000),

		TimestampISOSentinel: getEnvBool("TIMESTAMP_ISO_SENTINEL", false),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

// ResolveOutput anchors relative output paths under OutputDir.
func (c Config) ResolveOutput(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.OutputDir, path)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
