package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string

	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Fare provider
	FareAPIEndpoint string
	FareAPIToken    string
	Currency        string
	PaceDelay       time.Duration
	RateLimitPause  time.Duration

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Postgres place directory (optional; static table when empty)
	PostgresURI string

	// Telegram
	TelegramAPIURL   string
	TelegramBotToken string

	// Search cache / price watch
	SearchCacheTTL time.Duration
	WatchTTL       time.Duration
	WatchInterval  time.Duration

	// Affiliate links
	TrafficMarker string
	TrafficSubID  string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	// Set defaults and override with env vars
	config := &Config{
		AppVersion:   getEnv("APP_VERSION", "1.0.0"),
		Port:         getEnv("PORT", "8080"),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 30)) * time.Second,

		FareAPIEndpoint: getEnv("FARE_API_ENDPOINT", "https://api.travelpayouts.com/v1/prices/cheap"),
		FareAPIToken:    getEnv("FARE_API_TOKEN", ""),
		Currency:        getEnv("FARE_CURRENCY", "RUB"),
		PaceDelay:       time.Duration(getEnvAsInt("FARE_PACE_DELAY_MS", 500)) * time.Millisecond,
		RateLimitPause:  time.Duration(getEnvAsInt("FARE_RATE_LIMIT_PAUSE", 60)) * time.Second,

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		PostgresURI: getEnv("POSTGRES_URI", ""),

		TelegramAPIURL:   getEnv("TELEGRAM_API_URL", "https://api.telegram.org"),
		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),

		SearchCacheTTL: time.Duration(getEnvAsInt("SEARCH_CACHE_TTL", 3600)) * time.Second,
		WatchTTL:       time.Duration(getEnvAsInt("WATCH_TTL_DAYS", 30)) * 24 * time.Hour,
		WatchInterval:  time.Duration(getEnvAsInt("WATCH_INTERVAL", 21600)) * time.Second,

		TrafficMarker: getEnv("TRAFFIC_SOURCE", ""),
		TrafficSubID:  getEnv("TRAFFIC_SUB_ID", "telegram"),
	}

	return config, nil
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
