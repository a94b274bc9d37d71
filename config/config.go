// Package config loads the bot configuration from a YAML file, a .env file and the environment
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const (
	DefaultConfigFile   = "config.yml"
	DefaultDatabasePath = "data.sqlite"
	DefaultSessionPath  = "session.json"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Telegram holds the credentials of both Telegram APIs the bot talks to
type Telegram struct {
	BotToken    string `yaml:"bot_token"`
	APIID       int    `yaml:"api_id"`
	APIHash     string `yaml:"api_hash"`
	SessionPath string `yaml:"session_path"`
}

type Storage struct {
	DatabasePath string `yaml:"database_path"`
}

type Config struct {
	Telegram Telegram `yaml:"telegram"`
	Storage  Storage  `yaml:"storage"`
}

// Load reads .env (if present), then the YAML file named by CONFIG_FILE or config.yml (if present),
// then applies environment variables on top.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("config: No .env file loaded", "error", err)
	}

	path := getEnv("CONFIG_FILE", DefaultConfigFile)
	cfg, err := loadFromYAML(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		slog.Debug("config: No config file, using environment only", "path", path)
		cfg = &Config{}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return cfg, nil
}

func loadFromYAML(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}

	return &cfg, nil
}

func (c *Config) applyEnv() error {
	// TELEGRAM_BOT_TOKEN wins over the shorter BOT_TOKEN
	if token := getEnv("TELEGRAM_BOT_TOKEN", os.Getenv("BOT_TOKEN")); token != "" {
		c.Telegram.BotToken = token
	}

	if raw := os.Getenv("API_ID"); raw != "" {
		id, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("%w: API_ID must be a number: %v", ErrInvalidConfig, err)
		}
		c.Telegram.APIID = id
	}

	if hash := os.Getenv("API_HASH"); hash != "" {
		c.Telegram.APIHash = hash
	}
	if path := os.Getenv("SESSION_PATH"); path != "" {
		c.Telegram.SessionPath = path
	}
	if path := os.Getenv("DATABASE_PATH"); path != "" {
		c.Storage.DatabasePath = path
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.Storage.DatabasePath == "" {
		c.Storage.DatabasePath = DefaultDatabasePath
	}
	if c.Telegram.SessionPath == "" {
		c.Telegram.SessionPath = DefaultSessionPath
	}
}

// Validate reports every missing required value at once
func (c *Config) Validate() error {
	var missing []string

	if c.Telegram.BotToken == "" {
		missing = append(missing, "TELEGRAM_BOT_TOKEN")
	}
	if c.Telegram.APIID <= 0 {
		missing = append(missing, "API_ID")
	}
	if c.Telegram.APIHash == "" {
		missing = append(missing, "API_HASH")
	}
	if c.Storage.DatabasePath == "" {
		missing = append(missing, "DATABASE_PATH")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidConfig, strings.Join(missing, ", "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
