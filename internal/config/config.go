package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Question-answering backend
	BackendURL     string
	BackendTimeout time.Duration

	// Chat views
	ViewIdleTTL     time.Duration
	RateLimitPerMin int

	// Redis (optional, caches video metadata)
	RedisURL         string
	MetadataCacheTTL time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:             getEnvOrDefault("PORT", "8080"),
		Env:              getEnvOrDefault("ENV", "local"),
		BackendURL:       getEnvOrDefault("BACKEND_URL", "http://127.0.0.1:8000/v01/rest/"),
		BackendTimeout:   getEnvAsDurationOrDefault("BACKEND_TIMEOUT", 0),
		ViewIdleTTL:      getEnvAsDurationOrDefault("VIEW_IDLE_TTL", 30*time.Minute),
		RateLimitPerMin:  getEnvAsIntOrDefault("RATE_LIMIT_PER_MIN", 120),
		RedisURL:         getEnvOrDefault("REDIS_URL", ""),
		MetadataCacheTTL: getEnvAsDurationOrDefault("METADATA_CACHE_TTL", 24*time.Hour),
	}

	return cfg
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}
