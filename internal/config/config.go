package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	Environment string
	LogLevel    string

	HTTPAddr   string
	WebBaseURL string

	DBType     string
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	BotToken  string
	MediaRoot string

	LoginRatePerSec float64
	LoginBurst      int

	Seed SeedConfig
}

// SeedConfig bootstraps a default apartment with one admin resident so a
// fresh install is usable without touching the database by hand.
type SeedConfig struct {
	ApartmentName   string
	AdminTelegramID int64
	AdminFullName   string
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "kvartplata"),
		Environment: getenv("ENVIRONMENT", "development"),
		LogLevel:    getenv("LOG_LEVEL", "info"),

		HTTPAddr:   getenv("HTTP_ADDR", ":8080"),
		WebBaseURL: strings.TrimRight(getenv("WEB_BASE_URL", "http://localhost:8080"), "/"),

		DBType:     getenv("DATABASE_TYPE", "postgres"),
		DBHost:     getenv("DATABASE_HOST", "localhost"),
		DBPort:     getenv("DATABASE_PORT", "5432"),
		DBName:     getenv("DATABASE_NAME", "kvartplata"),
		DBUser:     getenv("DATABASE_USER", "postgres"),
		DBPassword: getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:  getenv("DATABASE_SSLMODE", "disable"),

		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getenvInt("REDIS_DB", 0),

		BotToken:  strings.TrimSpace(getenv("BOT_TOKEN", "")),
		MediaRoot: getenv("MEDIA_ROOT", "media/receipts"),

		LoginRatePerSec: getenvFloat("LOGIN_RATE_PER_SEC", 1),
		LoginBurst:      getenvInt("LOGIN_BURST", 5),

		Seed: SeedConfig{
			ApartmentName:   strings.TrimSpace(getenv("SEED_APARTMENT_NAME", "")),
			AdminTelegramID: getenvInt64("SEED_ADMIN_TELEGRAM_ID", 0),
			AdminFullName:   getenv("SEED_ADMIN_FULL_NAME", "Administrator"),
		},
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}
