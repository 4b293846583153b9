package configs

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Client
	APIURL        string
	SessionStore  string
	SessionFile   string
	SessionSecret string

	// Shared
	RedisHost string
	RedisPort int
	LogDir    string

	// Dev backend
	APIPort      int
	BackendStore string
	BackendCache string
	CacheTTL     time.Duration
	DBHost       string
	DBPort       int
	DBUser       string
	DBPassword   string
	DBName       string
}

func LoadConfig() Config {
	// Muat file .env
	if err := godotenv.Load(); err != nil {
		// Hanya log jika tidak dalam mode test
		if os.Getenv("GO_ENV") != "test" {
			log.Println("No .env file found, using default values")
		}
	}

	return Config{
		APIURL:        getString("TODO_API_URL", "http://localhost:3000"),
		SessionStore:  getString("SESSION_STORE", "file"),
		SessionFile:   getString("SESSION_FILE", defaultSessionFile()),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		RedisHost:     getString("REDIS_HOST", "localhost"),
		RedisPort:     getInt("REDIS_PORT", 6379),
		LogDir:        getString("LOG_DIR", "logs"),
		APIPort:       getInt("API_PORT", 3000),
		BackendStore:  getString("BACKEND_STORE", "memory"),
		BackendCache:  getString("BACKEND_CACHE", "none"),
		CacheTTL:      getDuration("CACHE_TTL", time.Hour),
		DBHost:        getString("DB_HOST", "localhost"),
		DBPort:        getInt("DB_PORT", 5432),
		DBUser:        os.Getenv("DB_USER"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBName:        getString("DB_NAME", "todos"),
	}
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "todo", "session.json")
}
