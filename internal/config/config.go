package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIBaseURL  string
	ServerPort  string
	RedisURL    string
	CacheTTL    time.Duration
	HTTPTimeout time.Duration
	LogLevel    string
	LogFile     string
	GinMode     string
}

func Load() *Config {
	// Load .env file if exists
	godotenv.Load()

	return &Config{
		APIBaseURL:  getEnv("API_BASE_URL", "http://localhost:5000"),
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		RedisURL:    getEnv("REDIS_URL", ""),
		CacheTTL:    time.Duration(getEnvAsInt("CACHE_TTL_SECONDS", 30)) * time.Second,
		HTTPTimeout: time.Duration(getEnvAsInt("HTTP_TIMEOUT_SECONDS", 30)) * time.Second,
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFile:     getEnv("LOG_FILE", ""),
		GinMode:     getEnv("GIN_MODE", "release"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil && intValue > 0 {
			return intValue
		}
	}
	return defaultValue
}
