package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port               string
	DatabasePath       string
	LogLevel           string
	MaxUploadSizeBytes int64
	CORSAllowedOrigin  string
}

var Cfg *AppConfig

func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: no .env file found, relying on OS environment variables and defaults.")
	} else {
		log.Println(".env file loaded successfully.")
	}

	maxUploadSizeBytesStr := getEnv("MAX_UPLOAD_SIZE_BYTES", "10485760")
	maxUploadSizeBytes, err := strconv.ParseInt(maxUploadSizeBytesStr, 10, 64)
	if err != nil {
		log.Printf("WARNING: Invalid MAX_UPLOAD_SIZE_BYTES format '%s'. Using default 10MB. Error: %v", maxUploadSizeBytesStr, err)
		maxUploadSizeBytes = 10 * 1024 * 1024
	}

	Cfg = &AppConfig{
		Port:               getEnv("PORT", "8080"),
		DatabasePath:       getEnv("DATABASE_PATH", "./sellfolio.db"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		MaxUploadSizeBytes: maxUploadSizeBytes,
		CORSAllowedOrigin:  getEnv("CORS_ALLOWED_ORIGIN", "http://localhost:3000"),
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DBPath=%s",
		Cfg.Port, Cfg.LogLevel, Cfg.DatabasePath)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Environment variable %s not set, using default: %s", key, fallback)
	return fallback
}
