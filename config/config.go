package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application-level configuration
type Config struct {
	// Data generation
	Seed          int64
	NHosts        int
	NGuests       int
	NBookings     int
	LossInjection bool

	// Paths
	RawDataDir       string
	ProcessedDataDir string
	SQLDir           string

	// Database
	DatabaseURL string
	MaxRetries  int

	// Logging
	Debug bool
}

// Load reads configuration from a .env file (if present) and environment
// variables, falling back to defaults
func Load() *Config {
	_ = godotenv.Load() // optional; env vars win either way

	return &Config{
		Seed:             getEnvInt64("SEED", 42),
		NHosts:           getEnvInt("N_HOSTS", 500),
		NGuests:          getEnvInt("N_GUESTS", 5000),
		NBookings:        getEnvInt("N_BOOKINGS", 15000),
		LossInjection:    getEnvBool("LOSS_INJECTION", true),
		RawDataDir:       getEnv("RAW_DATA_DIR", "data/raw"),
		ProcessedDataDir: getEnv("PROCESSED_DATA_DIR", "data/processed"),
		SQLDir:           getEnv("SQL_DIR", "sql"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		MaxRetries:       getEnvInt("MAX_RETRIES", 3),
		Debug:            getEnvBool("LOG_DEBUG", false),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvInt64(key string, defaultVal int64) int64 {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}
