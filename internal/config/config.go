package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config collects everything the binaries read from the environment.
type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   string
	RedisAddr   string
	PlunkAPIKey string
	PlunkFrom   string
	PlunkAPIURL string
	AppURL      string
}

// Load reads .env if present and assembles the config. DATABASE_URL wins;
// otherwise the URL is built from the DB_* parts.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port:        getenv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		RedisAddr:   getenv("REDIS_ADDR", "127.0.0.1:6379"),
		PlunkAPIKey: os.Getenv("PLUNK_API_KEY"),
		PlunkFrom:   os.Getenv("PLUNK_FROM"),
		PlunkAPIURL: getenv("PLUNK_API_URL", "https://api.useplunk.com/v1/send"),
		AppURL:      getenv("APP_URL", "http://localhost:3000"),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s",
			os.Getenv("DB_USER"),
			os.Getenv("DB_PASSWORD"),
			getenv("DB_HOST", "localhost"),
			getenv("DB_PORT", "5432"),
			os.Getenv("DB_NAME"),
		)
	}

	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
