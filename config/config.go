package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

var (
	PORT       string
	DB_URL     string
	JWT_SECRET string

	CORS_ORIGIN string
	APP_URL     string
	BASE_DOMAIN string
	LOG_LEVEL   string

	STRIPE_SECRET_KEY     string
	STRIPE_WEBHOOK_SECRET string
	STRIPE_PRICE_MONTHLY  string
	STRIPE_PRICE_YEARLY   string

	DEFAULT_TIMEZONE    string
	SWEEP_INTERVAL      time.Duration
	REEVALUATE_INTERVAL time.Duration
)

func LoadEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found. Using system environment variables.")
	}

	PORT = getEnv("PORT", "8080")
	DB_URL = mustEnv("DB_URL")
	JWT_SECRET = mustEnv("JWT_SECRET")

	CORS_ORIGIN = getEnv("CORS_ORIGIN", "http://localhost:5173")
	APP_URL = getEnv("APP_URL", "http://localhost:5173")
	BASE_DOMAIN = getEnv("BASE_DOMAIN", "localhost")
	LOG_LEVEL = getEnv("LOG_LEVEL", "info")

	// Stripe keys are optional so the API can run without checkout locally.
	STRIPE_SECRET_KEY = getEnv("STRIPE_SECRET_KEY", "")
	STRIPE_WEBHOOK_SECRET = getEnv("STRIPE_WEBHOOK_SECRET", "")
	STRIPE_PRICE_MONTHLY = getEnv("STRIPE_PRICE_MONTHLY", "")
	STRIPE_PRICE_YEARLY = getEnv("STRIPE_PRICE_YEARLY", "")

	DEFAULT_TIMEZONE = getEnv("DEFAULT_TIMEZONE", "UTC")
	SWEEP_INTERVAL = getDuration("SWEEP_INTERVAL", time.Hour)
	REEVALUATE_INTERVAL = getDuration("REEVALUATE_INTERVAL", time.Minute)
}

func mustEnv(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("Missing required environment variable: %s", key)
	}
	return v
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("Invalid duration for %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}
