package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

// Config holds all application configuration.
type Config struct {
	ServerPort     string
	GinMode        string
	LogLevel       string
	LogFormat      string
	LogDir         string
	StorageDriver  string
	RedisURL       string
	ArtifactTTL    time.Duration
	MaxUploadBytes int64
	// AllowedOrigins controls HTTP CORS for the JSON API.
	// Empty slice means all origins are permitted (dev default).
	AllowedOrigins []string
	// UploadRate is the number of uploads a single IP may submit per minute.
	UploadRate         int
	RepeatTableHeader  bool
	BrotliQuality      int
	SessionCookieName  string
	SessionCookieHTTPS bool
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		GinMode:            getEnv("GIN_MODE", "debug"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "pretty"),
		LogDir:             getEnv("LOG_DIR", "./logs"),
		StorageDriver:      strings.ToLower(getEnv("STORAGE_DRIVER", StorageMemory)),
		RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379/0"),
		ArtifactTTL:        time.Duration(getEnvInt("ARTIFACT_TTL_MINUTES", 60)) * time.Minute,
		MaxUploadBytes:     int64(getEnvInt("MAX_UPLOAD_SIZE_MB", 10)) * 1024 * 1024,
		AllowedOrigins:     parseOrigins(getEnv("ALLOWED_ORIGINS", "")),
		UploadRate:         getEnvInt("UPLOAD_RATE_PER_MINUTE", 30),
		RepeatTableHeader:  getEnvBool("REPORT_REPEAT_HEADER", false),
		BrotliQuality:      getEnvInt("BROTLI_QUALITY", 4),
		SessionCookieName:  getEnv("SESSION_COOKIE_NAME", "boletim_session"),
		SessionCookieHTTPS: getEnvBool("SESSION_COOKIE_SECURE", false),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// parseOrigins splits a comma-separated origins string into a trimmed slice.
// Returns nil (allow-all) if the input is empty.
func parseOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
