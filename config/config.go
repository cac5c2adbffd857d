package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Environment   string
	Port          string
	MongoURL      string
	MongoDB       string
	JWTSecret     string
	SessionDBPath string
	CORSOrigins   []string
}

// Load loads configuration from environment variables.
// It attempts to load from a .env file when not running in production,
// because in production we rely on system environment variables only.
func Load() (*Config, error) {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	if env != "production" {
		if err := godotenv.Load(); err != nil {
			log.Printf("Warning: .env file not found or couldn't be loaded: %v", err)
		}
	}

	cfg := &Config{
		Environment:   env,
		Port:          os.Getenv("PORT"),
		MongoURL:      os.Getenv("MONGO_URL"),
		MongoDB:       os.Getenv("MONGO_DB"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		SessionDBPath: os.Getenv("SESSION_DB_PATH"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.MongoURL == "" {
		cfg.MongoURL = "mongodb://localhost:27017"
	}
	if cfg.MongoDB == "" {
		cfg.MongoDB = "faithconnect"
	}
	if cfg.SessionDBPath == "" {
		cfg.SessionDBPath = "session.db"
	}

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}

	return cfg, nil
}
