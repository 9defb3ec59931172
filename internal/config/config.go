package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/jakechorley/tour-desk/pkg/db"
)

// DatabaseURLEnv overrides databaseURL from the config file when set
const DatabaseURLEnv = "TOURS_DATABASE_URL"

const (
	defaultRequestTimeout = 10 * time.Second
	defaultLogDir         = "logs"
)

// Config represents the application configuration
type Config struct {
	DatabaseURL    string        `yaml:"databaseURL"`
	WatchTables    []string      `yaml:"watchTables,omitempty" validate:"dive,oneof=tours tour_clients tour_guides"`
	RequestTimeout time.Duration `yaml:"requestTimeout,omitempty" validate:"gte=0"`
	LogDir         string        `yaml:"logDir,omitempty"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// LoadWithEnv loads tours_config.<env>.yaml from the current directory or the
// user's home directory
func LoadWithEnv(env string) (*Config, error) {
	configPath, err := findConfigFile(fmt.Sprintf("tours_config.%s.yaml", env))
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads, defaults and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if url := os.Getenv(DatabaseURLEnv); url != "" {
		cfg.DatabaseURL = url
	}

	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the configuration used when no file is given (in-memory mode)
func Default() *Config {
	cfg := &Config{DatabaseURL: os.Getenv(DatabaseURLEnv)}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if len(cfg.WatchTables) == 0 {
		cfg.WatchTables = []string{db.TableTours}
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.LogDir == "" {
		cfg.LogDir = defaultLogDir
	}
}

// Validate validates the configuration struct
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// RequireDatabase checks that a database URL is configured
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("config validation failed: databaseURL is required (or set %s)", DatabaseURLEnv)
	}
	return nil
}

// findConfigFile searches for name in the current directory and home directory
func findConfigFile(name string) (string, error) {
	if _, err := os.Stat(name); err == nil {
		return name, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, name)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("%s not found in current directory or home directory", name)
}
