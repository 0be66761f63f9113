package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Credential store drivers
const (
	StoreMemory   = "memory"
	StoreBolt     = "bolt"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

type Config struct {
	Port        string
	LogLevel    string
	FrontendURL string
	// Backend API
	BackendURL     string
	RequestTimeout time.Duration
	PageSize       int
	// Credential Store
	CredentialStore     string
	CredentialStorePath string // bbolt file
	CredentialKey       string // namespace inside shared stores (redis/postgres)
	RejectExpiredTokens bool
	// Redis/Upstash Configuration
	RedisURL      string
	RedisPassword string
	// Postgres
	DBUrl string
	// Notifications
	NotificationBuffer int
}

func LoadConfig() (*Config, error) {
	// .env is optional; real environment wins
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8090"),
		LogLevel:    getEnv("LOG_LEVEL", "debug"),
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		// Trailing slash would produce //v1 paths
		BackendURL:     strings.TrimRight(getEnv("BACKEND_URL", "http://localhost:8080"), "/"),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT_SECONDS", 15*time.Second),
		PageSize:       getEnvInt("PAGE_SIZE", 10),

		CredentialStore:     strings.ToLower(getEnv("CREDENTIAL_STORE", StoreBolt)),
		CredentialStorePath: getEnv("CREDENTIAL_STORE_PATH", "jobboard-credentials.db"),
		CredentialKey:       getEnv("CREDENTIAL_KEY", "default"),
		RejectExpiredTokens: getEnvBool("REJECT_EXPIRED_TOKENS", true),

		RedisURL:      getEnv("UPSTASH_REDIS_URL", getEnv("REDIS_URL", "")),
		RedisPassword: getEnv("UPSTASH_REDIS_PASSWORD", getEnv("REDIS_PASSWORD", "")),

		DBUrl: getEnv("DATABASE_URL", ""),

		NotificationBuffer: getEnvInt("NOTIFICATION_BUFFER", 32),
	}

	if cfg.CredentialStore == StoreRedis && cfg.RedisURL == "" {
		log.Println("WARNING: CREDENTIAL_STORE=redis but REDIS_URL is missing. Falling back to bolt.")
		cfg.CredentialStore = StoreBolt
	}
	if cfg.CredentialStore == StorePostgres && cfg.DBUrl == "" {
		log.Println("WARNING: CREDENTIAL_STORE=postgres but DATABASE_URL is missing. Falling back to bolt.")
		cfg.CredentialStore = StoreBolt
	}
	if cfg.PageSize < 1 {
		cfg.PageSize = 10
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// getEnvDuration reads a whole number of seconds
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	seconds := getEnvInt(key, -1)
	if seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}
