package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

func Config(key string) string {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("Warning: .env file not found, reading from system environment variables")
	}

	return os.Getenv(key)
}

// Duration reads a Go duration string (e.g. "24h", "5m") from the environment,
// falling back to def when the variable is unset or malformed.
func Duration(key string, def time.Duration) time.Duration {
	raw := Config(key)
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Warning: invalid duration for %s (%q), using default %s", key, raw, def)
		return def
	}
	return d
}

func Int(key string, def int) int {
	raw := Config(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Warning: invalid integer for %s (%q), using default %d", key, raw, def)
		return def
	}
	return n
}
