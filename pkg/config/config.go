package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                   string
	DatabaseURL            string
	JWTSecret              string
	IMAPAddr               string
	IMAPUsername           string
	IMAPPassword           string
	MaxThreadLength        int
	SyncbackWorkers        int
	SyncbackMaxAttempts    int
	SyncbackRetryBackoff   time.Duration
	SyncbackAttemptTimeout time.Duration
	DeltaHeartbeat         time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:                   getEnv("PORT", "8080"),
		DatabaseURL:            getEnv("DATABASE_URL", "host=localhost user=postgres dbname=localsync port=5432 sslmode=disable"),
		JWTSecret:              getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		IMAPAddr:               getEnv("IMAP_ADDR", ""),
		IMAPUsername:           getEnv("IMAP_USERNAME", ""),
		IMAPPassword:           getEnv("IMAP_PASSWORD", ""),
		MaxThreadLength:        getEnvInt("MAX_THREAD_LENGTH", 500),
		SyncbackWorkers:        getEnvInt("SYNCBACK_WORKERS", 3),
		SyncbackMaxAttempts:    getEnvInt("SYNCBACK_MAX_ATTEMPTS", 3),
		SyncbackRetryBackoff:   getEnvDuration("SYNCBACK_RETRY_BACKOFF", 2*time.Second),
		SyncbackAttemptTimeout: getEnvDuration("SYNCBACK_ATTEMPT_TIMEOUT", 30*time.Second),
		DeltaHeartbeat:         getEnvDuration("DELTA_HEARTBEAT", 1*time.Second),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
