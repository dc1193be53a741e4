// Package config loads the service configuration from an optional YAML
// file overlaid with environment variables. Secrets (API keys, SMTP
// password) only ever come from the environment; a .env file is honored
// when present.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// RedisConfig holds connection settings for the Redis backend.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"-"`
	DB       int    `yaml:"db"`
	// Lock enables the distributed per-session lock, for deployments
	// running more than one instance against the same Redis.
	Lock bool `yaml:"lock"`
}

// StoreConfig selects and configures the session store backend.
type StoreConfig struct {
	Backend string      `yaml:"backend"`
	Path    string      `yaml:"path"`
	Redis   RedisConfig `yaml:"redis"`
}

// ModelConfig configures one AI collaborator.
type ModelConfig struct {
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"-"`
}

// SMTPConfig configures receipt delivery.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Sender   string `yaml:"sender"`
	Password string `yaml:"-"`
}

// Config is the full service configuration.
type Config struct {
	ListenAddr string `yaml:"listen_addr"`
	OrdersFile string `yaml:"orders_file"`
	UploadsDir string `yaml:"uploads_dir"`
	LedgerFile string `yaml:"ledger_file"`
	LogLevel   string `yaml:"log_level"`

	Store      StoreConfig `yaml:"store"`
	Classifier ModelConfig `yaml:"classifier"`
	Vision     ModelConfig `yaml:"vision"`
	SMTP       SMTPConfig  `yaml:"smtp"`
}

// Default returns the baseline configuration.
func Default() *Config {
	return &Config{
		ListenAddr: ":8000",
		OrdersFile: "data/orders.json",
		UploadsDir: "uploads",
		LedgerFile: "refunds.json",
		LogLevel:   "info",
		Store: StoreConfig{
			Backend: StoreMemory,
			Path:    ".refundflow/sessions",
			Redis: RedisConfig{
				Addr: "localhost:6379",
			},
		},
		SMTP: SMTPConfig{
			Host: "smtp.gmail.com",
			Port: 465,
		},
	}
}

// Load builds the configuration: defaults, then the YAML file (if any),
// then environment overrides. An empty path means "no config file".
func Load(path string) (*Config, error) {
	// Best effort; a missing .env is normal.
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	switch cfg.Store.Backend {
	case StoreMemory, StoreFile, StoreRedis:
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.ListenAddr, "REFUNDFLOW_LISTEN_ADDR")
	setString(&c.OrdersFile, "REFUNDFLOW_ORDERS_FILE")
	setString(&c.UploadsDir, "REFUNDFLOW_UPLOADS_DIR")
	setString(&c.LedgerFile, "REFUNDFLOW_LEDGER_FILE")
	setString(&c.LogLevel, "REFUNDFLOW_LOG_LEVEL")

	setString(&c.Store.Backend, "REFUNDFLOW_STORE_BACKEND")
	setString(&c.Store.Path, "REFUNDFLOW_STORE_PATH")
	setString(&c.Store.Redis.Addr, "REDIS_ADDR")
	setString(&c.Store.Redis.Password, "REDIS_PASSWORD")
	setInt(&c.Store.Redis.DB, "REDIS_DB")

	setString(&c.Classifier.APIKey, "GROQ_API_KEY")
	setString(&c.Classifier.Model, "REFUNDFLOW_CLASSIFIER_MODEL")
	setString(&c.Vision.APIKey, "OPENROUTER_API_KEY")
	setString(&c.Vision.Model, "REFUNDFLOW_VISION_MODEL")

	setString(&c.SMTP.Host, "SMTP_HOST")
	setInt(&c.SMTP.Port, "SMTP_PORT")
	setString(&c.SMTP.Sender, "EMAIL_SENDER")
	setString(&c.SMTP.Password, "EMAIL_PASSWORD")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
