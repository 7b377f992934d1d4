// Package config loads runtime configuration from the environment and owns
// the MongoDB connection lifecycle.
package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port         string
	MongoURI     string
	DatabaseName string
	LogLevel     string
	LogPretty    bool
	AuthEnabled  bool
	JWTSecret    string
	GinMode      string
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	// .env is optional, the environment always wins
	_ = godotenv.Load()

	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		MongoURI:     getEnv("MONGODB_URI", ""),
		DatabaseName: getEnv("DATABASE_NAME", "dup_portfolio"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogPretty:    getEnvAsBool("LOG_PRETTY", false),
		AuthEnabled:  getEnvAsBool("AUTH_ENABLED", false),
		JWTSecret:    getEnv("JWT_SECRET", ""),
		GinMode:      getEnv("GIN_MODE", ""),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that have no usable default.
func (c *Config) Validate() error {
	if c.AuthEnabled && c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set when AUTH_ENABLED is true")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return value
}
