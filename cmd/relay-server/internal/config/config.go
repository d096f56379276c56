// Package config provides configuration management for the relay server.
// It loads settings from environment variables with sensible defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration for the relay server.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string
	Port int

	// OriginURL is echoed in CORS headers; "*" allows any origin.
	OriginURL string
}

// DatabaseConfig holds database connection configuration.
type DatabaseConfig struct {
	Driver   string // mysql, postgres, sqlite3
	Host     string
	Port     int
	User     string
	Password string
	Database string
	Prefix   string // Table prefix (default: "relay_")
}

// AuthConfig holds credential issuance and verification configuration.
type AuthConfig struct {
	PrivateKeyPath string // RSA private key PEM, used to sign bearer tokens
	PublicKeyPath  string // RSA public key PEM, used to verify bearer tokens
	TokenTTLHours  int

	// Seed principal created at startup when missing.
	AdminUsername string
	AdminPassword string
	AdminAPIKey   string
}

// Load loads configuration from environment variables.
// Follows 12-factor app principles - configuration via environment.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:      getEnv("SERVER_HOST", "0.0.0.0"),
			Port:      getEnvInt("SERVER_PORT", 8080),
			OriginURL: getEnv("ORIGIN_URL", "*"),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "sqlite3"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "relay"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "relay.db"),
			Prefix:   getEnv("DB_PREFIX", "relay_"),
		},
		Auth: AuthConfig{
			PrivateKeyPath: getEnv("AUTH_PRIVATE_KEY", ""),
			PublicKeyPath:  getEnv("AUTH_PUBLIC_KEY", ""),
			TokenTTLHours:  getEnvInt("AUTH_TOKEN_TTL_HOURS", 24),
			AdminUsername:  getEnv("ADMIN_USERNAME", ""),
			AdminPassword:  getEnv("ADMIN_PASSWORD", ""),
			AdminAPIKey:    getEnv("ADMIN_API_KEY", ""),
		},
	}

	// Validate required fields
	if cfg.Auth.PrivateKeyPath == "" {
		return nil, fmt.Errorf("AUTH_PRIVATE_KEY environment variable is required")
	}
	if cfg.Database.Driver != "sqlite3" && cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD environment variable is required for %s", cfg.Database.Driver)
	}

	return cfg, nil
}

// GetDSN returns the database connection string based on driver.
func (c *DatabaseConfig) GetDSN() string {
	switch strings.ToLower(c.Driver) {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
			c.User, c.Password, c.Host, c.Port, c.Database)
	case "postgres":
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			c.Host, c.Port, c.User, c.Password, c.Database)
	case "sqlite3":
		return c.Database // SQLite uses file path as DSN
	default:
		return ""
	}
}

// getEnv retrieves environment variable or returns default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves environment variable as integer or returns default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
