// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml)
//  2. Environment variables (fallback)
//
// Example usage:
//
//	cfg := config.LoadOrEnv()
//	dbPath := cfg.Storage.DatabasePath
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the entire application configuration
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Auth          AuthConfig          `yaml:"auth"`
	Storage       StorageConfig       `yaml:"storage"`
	Upload        UploadConfig        `yaml:"upload"`
	Duplicates    DuplicatesConfig    `yaml:"duplicates"`
	Categorizer   CategorizerConfig   `yaml:"categorizer"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// AuthConfig holds JWT settings
type AuthConfig struct {
	JWTSecret   string `yaml:"jwt_secret"`
	ExpiryHours int    `yaml:"expiry_hours"`
}

// StorageConfig holds database configuration
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// UploadConfig holds file ingestion settings
type UploadConfig struct {
	MaxFileSizeMB int `yaml:"max_file_size_mb"`
	ProgressEvery int `yaml:"progress_every"` // persist progress every N rows
}

// DuplicatesConfig holds duplicate detection settings
type DuplicatesConfig struct {
	WindowDays      int     `yaml:"window_days"`
	AmountTolerance float64 `yaml:"amount_tolerance"`
	Threshold       float64 `yaml:"threshold"`
}

// CategorizerConfig holds categorization settings
type CategorizerConfig struct {
	FuzzyFloor float64 `yaml:"fuzzy_floor"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads and parses the config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${PENNYFLOW_JWT_SECRET})
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnvInt("PENNYFLOW_PORT", 8080),
			AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Auth: AuthConfig{
			JWTSecret:   os.Getenv("PENNYFLOW_JWT_SECRET"),
			ExpiryHours: getEnvInt("PENNYFLOW_JWT_EXPIRY_HOURS", 24),
		},
		Storage: StorageConfig{
			DatabasePath: getEnv("PENNYFLOW_DB_PATH", "pennyflow.db"),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "text"),
			},
		},
	}
	cfg.applyDefaults()
	return cfg
}

// LoadOrEnv tries to load from config.yaml, falls back to environment variables
func LoadOrEnv() *Config {
	return LoadOrEnvWithPath("config.yaml")
}

// LoadOrEnvWithPath tries to load from specified path, falls back to environment variables
func LoadOrEnvWithPath(path string) *Config {
	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

// applyDefaults fills in zero values that have sensible defaults.
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Auth.ExpiryHours == 0 {
		c.Auth.ExpiryHours = 24
	}
	if c.Storage.DatabasePath == "" {
		c.Storage.DatabasePath = "pennyflow.db"
	}
	if c.Upload.MaxFileSizeMB == 0 {
		c.Upload.MaxFileSizeMB = 100
	}
	if c.Upload.ProgressEvery == 0 {
		c.Upload.ProgressEvery = 100
	}
	if c.Duplicates.WindowDays == 0 {
		c.Duplicates.WindowDays = 3
	}
	if c.Duplicates.AmountTolerance == 0 {
		c.Duplicates.AmountTolerance = 0.01
	}
	if c.Duplicates.Threshold == 0 {
		c.Duplicates.Threshold = 0.8
	}
	if c.Categorizer.FuzzyFloor == 0 {
		c.Categorizer.FuzzyFloor = 0.85
	}
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = "info"
	}
	if c.Observability.Logging.Format == "" {
		c.Observability.Logging.Format = "text"
	}
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var result int
		if _, err := fmt.Sscanf(val, "%d", &result); err == nil {
			return result
		}
	}
	return fallback
}
