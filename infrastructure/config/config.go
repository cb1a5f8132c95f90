package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabasePath string

	RemoteSyncBaseURL string
	AuthBaseURL       string
	AuthAPIKey        string

	// VaultSecret derives the key that seals recovery credentials at rest.
	VaultSecret string

	SyncInterval            time.Duration
	SyncRetryWarnThreshold  int
	SessionCheckInterval    time.Duration
	SessionRefreshThreshold time.Duration

	ConnectivityProbeURL      string
	ConnectivityProbeInterval time.Duration

	ServerPort  string
	ServerHost  string
	Environment string

	LoginMaxAttempts int
	LoginWindow      time.Duration

	LogLevel  string
	LogFormat string

	CORSEnabled          bool
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool
}

var (
	ErrMissingDatabasePath  = errors.New("DATABASE_PATH is required")
	ErrMissingRemoteSyncURL = errors.New("REMOTE_SYNC_BASE_URL is required")
	ErrMissingAuthURL       = errors.New("AUTH_BASE_URL is required")
	ErrMissingVaultSecret   = errors.New("VAULT_SECRET is required")
	ErrInvalidDuration      = errors.New("invalid duration format")
)

func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		DatabasePath:      os.Getenv("DATABASE_PATH"),
		RemoteSyncBaseURL: os.Getenv("REMOTE_SYNC_BASE_URL"),
		AuthBaseURL:       os.Getenv("AUTH_BASE_URL"),
		AuthAPIKey:        os.Getenv("AUTH_API_KEY"),
		VaultSecret:       os.Getenv("VAULT_SECRET"),

		ConnectivityProbeURL: getEnvOrDefault("CONNECTIVITY_PROBE_URL", ""),

		ServerPort:  getEnvOrDefault("SERVER_PORT", "8080"),
		ServerHost:  getEnvOrDefault("SERVER_HOST", "localhost"),
		Environment: getEnvOrDefault("ENV", "development"),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),

		CORSEnabled:          getEnvOrDefaultBool("CORS_ENABLED", true),
		CORSAllowCredentials: getEnvOrDefaultBool("CORS_ALLOW_CREDENTIALS", true),
		CORSAllowedOrigins:   splitAndTrim(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "")),
	}

	if cfg.DatabasePath == "" {
		return nil, ErrMissingDatabasePath
	}
	if cfg.RemoteSyncBaseURL == "" {
		return nil, ErrMissingRemoteSyncURL
	}
	if cfg.AuthBaseURL == "" {
		return nil, ErrMissingAuthURL
	}
	if cfg.VaultSecret == "" {
		return nil, ErrMissingVaultSecret
	}

	var err error
	if cfg.SyncInterval, err = parseSeconds(getEnvOrDefault("SYNC_INTERVAL", "30")); err != nil {
		return nil, ErrInvalidDuration
	}
	if cfg.SessionCheckInterval, err = parseSeconds(getEnvOrDefault("SESSION_CHECK_INTERVAL", "30")); err != nil {
		return nil, ErrInvalidDuration
	}
	if cfg.SessionRefreshThreshold, err = parseSeconds(getEnvOrDefault("SESSION_REFRESH_THRESHOLD", "300")); err != nil {
		return nil, ErrInvalidDuration
	}
	if cfg.ConnectivityProbeInterval, err = parseSeconds(getEnvOrDefault("CONNECTIVITY_PROBE_INTERVAL", "15")); err != nil {
		return nil, ErrInvalidDuration
	}
	if cfg.LoginWindow, err = parseSeconds(getEnvOrDefault("LOGIN_WINDOW", "900")); err != nil {
		return nil, ErrInvalidDuration
	}
	cfg.LoginMaxAttempts = getEnvOrDefaultInt("LOGIN_MAX_ATTEMPTS", 5)
	cfg.SyncRetryWarnThreshold = getEnvOrDefaultInt("SYNC_RETRY_WARN_THRESHOLD", 10)

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvOrDefaultBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

func parseSeconds(value string) (time.Duration, error) {
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return time.Duration(seconds) * time.Second, nil
}

func splitAndTrim(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			res = append(res, trimmed)
		}
	}
	return res
}
