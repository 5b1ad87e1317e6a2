package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Env  string
	Port string

	// Storage
	StoragePrefix string
	LegacyPrefix  string

	// Lifecycle policy
	AutosaveInterval   time.Duration
	RolloverInterval   time.Duration
	MaxFuturePeriods   int
	MaxUnlockedPeriods int
	RetentionMonths    int

	// CORS
	AllowedOrigins []string

	// Maintenance routes (purge, manual rollover); disabled when empty
	MaintenanceAPIKey string
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "8080"),

		StoragePrefix: getEnv("STORAGE_PREFIX", "wisespend"),
		LegacyPrefix:  getEnv("LEGACY_PREFIX", "presupuesto"),

		AutosaveInterval:   getDuration("AUTOSAVE_INTERVAL", 30*time.Second),
		RolloverInterval:   getDuration("ROLLOVER_INTERVAL", time.Hour),
		MaxFuturePeriods:   getInt("MAX_FUTURE_PERIODS", 12),
		MaxUnlockedPeriods: getInt("MAX_UNLOCKED_PERIODS", 1),
		RetentionMonths:    getInt("RETENTION_MONTHS", 12),

		AllowedOrigins: []string{getEnv("CORS_ORIGIN", "http://localhost:5173")},

		MaintenanceAPIKey: getEnv("MAINTENANCE_API_KEY", ""),
	}

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, defaultValue)
		return defaultValue
	}
	return d
}

func getInt(key string, defaultValue int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		log.Printf("Warning: invalid %s value '%s', falling back to %d\n", key, raw, defaultValue)
		return defaultValue
	}
	return n
}
