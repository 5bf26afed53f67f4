package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	AuthJWTSecret string // Required: shared HMAC secret for verifying IdP tokens
	AuthIssuer    string // Optional: expected issuer claim (enforced when set)

	AppBaseURL string // Public base URL for invitation links (default: http://localhost:8080)

	DatabaseFile string // Path to SQLite database file (default: ./trips.db)

	SMTPAddr     string // Optional: SMTP relay host:port; log-only mailer when empty
	SMTPFrom     string // From address for invitation emails
	SMTPUsername string // Optional: SMTP auth username
	SMTPPassword string // Optional: SMTP auth password

	InviteTTL time.Duration // How long invitation links stay redeemable (default: 168h)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Expired-invite sweep interval (default: 1h)
}

func LoadConfig() Config {
	return Config{
		AuthJWTSecret: os.Getenv("AUTH_JWT_SECRET"),
		AuthIssuer:    os.Getenv("AUTH_ISSUER"),

		AppBaseURL:   getEnvOrDefault("APP_BASE_URL", "http://localhost:8080"),
		DatabaseFile: getEnvOrDefault("TRIPS_DATABASE_FILE", "trips.db"),

		SMTPAddr:     os.Getenv("SMTP_ADDR"),
		SMTPFrom:     getEnvOrDefault("SMTP_FROM", "no-reply@localhost"),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),

		InviteTTL: getEnvDurationOrDefault("INVITE_TTL", 7*24*time.Hour),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Integer values are read as minutes.
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
