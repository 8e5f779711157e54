package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

var (
	TelegramBotToken string
	BotUsername      string
	DatabaseFile     string
	RedisAddr        string
	SecretKey        string
	WebAppURL        string
	APIAddr          string
)

func init() {
	// Loads .env only if present, for local development.
	_ = godotenv.Load()
}

// Load reads the environment into the package variables. Called once from
// main; a missing required variable aborts the process before anything is
// listening.
func Load() {
	TelegramBotToken = mustGetEnv("TELEGRAM_BOT_TOKEN")
	BotUsername = mustGetEnv("BOT_USERNAME")
	RedisAddr = mustGetEnv("REDIS_HOST")
	SecretKey = mustGetEnv("SECRET_KEY")
	WebAppURL = mustGetEnv("WEBAPP_URL")
	DatabaseFile = getEnv("DATABASE_FILE", "serialbox.db")
	APIAddr = getEnv("API_ADDR", ":7000")
}

func mustGetEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("Environment variable %s is required", key)
	}
	return v
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
