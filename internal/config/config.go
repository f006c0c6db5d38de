package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// Session store
	StoreBackend string // sqlite | redis | memory
	SQLitePath   string
	RedisURL     string
	SessionTTL   time.Duration

	// Idle re-engagement
	IdleWindow        time.Duration
	IdleSweepInterval time.Duration

	// Contact relay
	RelayTimeout       time.Duration
	EmailJSEndpoint    string
	EmailJSServiceID   string
	EmailJSTemplateID  string
	FormSubmitEndpoint string
	ContactToEmail     string
	ContactCCEmail     string

	// Resilience
	MaxRetries     int
	InitialBackoff time.Duration
	MaxConcurrency int

	// Observability
	OTLPEndpoint string
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		StoreBackend: getEnv("STORE_BACKEND", "sqlite"),
		SQLitePath:   getEnv("SQLITE_PATH", "assistant.db"),
		RedisURL:     getEnv("REDIS_URL", "redis://localhost:6379/0"),
		SessionTTL:   getEnvDuration("SESSION_TTL", 30*time.Minute),

		IdleWindow:        getEnvDuration("IDLE_WINDOW", 2*time.Minute),
		IdleSweepInterval: getEnvDuration("IDLE_SWEEP_INTERVAL", 30*time.Second),

		RelayTimeout:       getEnvDuration("RELAY_TIMEOUT", 8*time.Second),
		EmailJSEndpoint:    getEnv("EMAILJS_ENDPOINT", "https://api.emailjs.com/api/v1.0/email/send"),
		EmailJSServiceID:   getEnv("EMAILJS_SERVICE_ID", "service_zentrium"),
		EmailJSTemplateID:  getEnv("EMAILJS_TEMPLATE_ID", "template_zentrium"),
		FormSubmitEndpoint: getEnv("FORMSUBMIT_ENDPOINT", "https://formsubmit.co/ajax/zentriumai@gmail.com"),
		ContactToEmail:     getEnv("CONTACT_TO_EMAIL", "zentriumai@gmail.com"),
		ContactCCEmail:     getEnv("CONTACT_CC_EMAIL", "ramzyraheesh@gmail.com"),

		MaxRetries:     getEnvInt("MAX_RETRIES", 2),
		InitialBackoff: getEnvDuration("INITIAL_BACKOFF", 100*time.Millisecond),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 50),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
