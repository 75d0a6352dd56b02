package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"doclib/database"
	"doclib/domain/caml"
	"doclib/logging"
)

// AppConfig holds application-wide system configuration.
type AppConfig struct {
	HTTPAddr    string
	HTTPLogPath string
	Database    *database.Config
	Logging     *logging.Config
	Browse      *BrowseConfig
}

// BrowseConfig holds paging, caching and SharePoint pacing settings.
type BrowseConfig struct {
	DefaultPageSize   int
	SessionTTL        time.Duration
	FieldCacheTTL     time.Duration
	RequestsPerSecond float64
	Burst             int
}

// LoadAppConfigFromEnv loads complete application configuration from environment variables.
func LoadAppConfigFromEnv() *AppConfig {
	return &AppConfig{
		HTTPAddr:    getEnvWithDefault("HTTP_ADDR", ":8080"),
		HTTPLogPath: getEnvWithDefault("HTTP_LOG_PATH", ""),
		Database:    LoadDatabaseConfigFromEnv(),
		Logging:     LoadLoggingConfigFromEnv(),
		Browse:      LoadBrowseConfigFromEnv(),
	}
}

// LoadBrowseConfigFromEnv loads browsing configuration from environment variables.
func LoadBrowseConfigFromEnv() *BrowseConfig {
	cfg := &BrowseConfig{
		DefaultPageSize:   getEnvIntWithDefault("DOCLIB_DEFAULT_PAGE_SIZE", caml.DefaultPageSize),
		SessionTTL:        getEnvDurationWithDefault("DOCLIB_SESSION_TTL", 30*time.Minute),
		FieldCacheTTL:     getEnvDurationWithDefault("DOCLIB_FIELD_CACHE_TTL", 10*time.Minute),
		RequestsPerSecond: getEnvFloatWithDefault("SP_REQUESTS_PER_SECOND", 10),
		Burst:             getEnvIntWithDefault("SP_BURST", 20),
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = caml.DefaultPageSize
	}
	return cfg
}

// LoadDatabaseConfigFromEnv loads database configuration from environment variables.
func LoadDatabaseConfigFromEnv() *database.Config {
	return &database.Config{
		Path:              getEnvWithDefault("DB_PATH", "./doclib.db"),
		MaxOpenConns:      getEnvIntWithDefault("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:      getEnvIntWithDefault("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime:   getEnvDurationWithDefault("DB_CONN_MAX_LIFETIME", time.Hour),
		ConnMaxIdleTime:   getEnvDurationWithDefault("DB_CONN_MAX_IDLE_TIME", 15*time.Minute),
		BusyTimeoutMs:     getEnvIntWithDefault("DB_BUSY_TIMEOUT_MS", 5000),
		EnableForeignKeys: getEnvBoolWithDefault("DB_ENABLE_FOREIGN_KEYS", true),
		EnableWAL:         getEnvBoolWithDefault("DB_ENABLE_WAL", true),
	}
}

// LoadLoggingConfigFromEnv loads logging configuration from environment variables.
func LoadLoggingConfigFromEnv() *logging.Config {
	return &logging.Config{
		Level:  getEnvWithDefault("LOG_LEVEL", "info"),
		Format: getEnvWithDefault("LOG_FORMAT", "json"),
		Output: getEnvWithDefault("LOG_OUTPUT", "stdout"),
	}
}

// envOr parses key with parse, falling back to def when unset or malformed.
func envOr[T any](key string, def T, parse func(string) (T, error)) T {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return def
	}
	parsed, err := parse(strings.TrimSpace(value))
	if err != nil {
		return def
	}
	return parsed
}

func getEnvWithDefault(key, def string) string {
	return envOr(key, def, func(v string) (string, error) { return v, nil })
}

func getEnvIntWithDefault(key string, def int) int {
	return envOr(key, def, strconv.Atoi)
}

func getEnvFloatWithDefault(key string, def float64) float64 {
	return envOr(key, def, func(v string) (float64, error) { return strconv.ParseFloat(v, 64) })
}

func getEnvDurationWithDefault(key string, def time.Duration) time.Duration {
	return envOr(key, def, time.ParseDuration)
}

func getEnvBoolWithDefault(key string, def bool) bool {
	return envOr(key, def, func(v string) (bool, error) { return parseBool(v, def), nil })
}

func parseBool(v string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}
