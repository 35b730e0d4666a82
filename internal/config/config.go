package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	API     APIConfig     `yaml:"api"`
	Storage StorageConfig `yaml:"storage"`
	Logger  LoggerConfig  `yaml:"logger"`
}

type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	// Timeout of 0 means requests wait indefinitely for the backend.
	Timeout time.Duration `yaml:"timeout"`
}

// UnmarshalYAML accepts the timeout as a duration string ("30s"), which
// yaml.v3 cannot decode into time.Duration on its own. Unset fields keep
// their current values.
func (c *APIConfig) UnmarshalYAML(node *yaml.Node) error {
	var aux struct {
		BaseURL string `yaml:"base_url"`
		Timeout string `yaml:"timeout"`
	}
	if err := node.Decode(&aux); err != nil {
		return err
	}

	if aux.BaseURL != "" {
		c.BaseURL = aux.BaseURL
	}
	if aux.Timeout != "" {
		d, err := time.ParseDuration(aux.Timeout)
		if err != nil {
			return fmt.Errorf("parse api.timeout: %w", err)
		}
		c.Timeout = d
	}
	return nil
}

type StorageConfig struct {
	// TokenDir is where the bearer token file lives. Empty means the
	// user config directory.
	TokenDir string `yaml:"token_dir"`
}

type LoggerConfig struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"`
}

// Load builds configuration in three layers: defaults, then an optional
// YAML file named by STOREFRONT_CONFIG, then environment variables.
func Load() (*Config, error) {
	godotenv.Load()

	cfg := &Config{
		API: APIConfig{
			BaseURL: "http://localhost:8000",
			Timeout: 0,
		},
		Logger: LoggerConfig{
			Level:    "info",
			Encoding: "console",
		},
	}

	if path := os.Getenv("STOREFRONT_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.API.BaseURL = getEnv("API_BASE_URL", cfg.API.BaseURL)
	cfg.API.Timeout = getEnvDuration("API_TIMEOUT", cfg.API.Timeout)
	cfg.Storage.TokenDir = getEnv("TOKEN_DIR", cfg.Storage.TokenDir)
	cfg.Logger.Level = getEnv("LOG_LEVEL", cfg.Logger.Level)
	cfg.Logger.Encoding = getEnv("LOG_ENCODING", cfg.Logger.Encoding)

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		fmt.Printf("Warning: invalid duration for %s, using default\n", key)
	}
	return defaultValue
}
