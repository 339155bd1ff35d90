package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Transport TransportConfig `yaml:"transport"`
	Store     StoreConfig     `yaml:"store"`
	DB        DBConfig        `yaml:"db"`
	Media     MediaConfig     `yaml:"media"`
	Lifecycle LifecycleConfig `yaml:"lifecycle"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	PingMessage string `yaml:"ping_message"`
}

type TransportConfig struct {
	Mode string `yaml:"mode"` // "http" or "stdio"
}

type StoreConfig struct {
	Driver   string `yaml:"driver"` // "sqlite" or "file"
	FilePath string `yaml:"file_path"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type MediaConfig struct {
	Dir       string `yaml:"dir"`
	URLPrefix string `yaml:"url_prefix"`
}

type LifecycleConfig struct {
	Enabled            bool          `yaml:"enabled"`
	AcknowledgeAfter   time.Duration `yaml:"acknowledge_after"`
	ProgressAfter      time.Duration `yaml:"progress_after"`
	ResolveAfter       time.Duration `yaml:"resolve_after"`
	CancelOnStatusEdit bool          `yaml:"cancel_on_status_edit"`
}

type RateLimitConfig struct {
	RedisURL string        `yaml:"redis_url"`
	Limit    int           `yaml:"limit"`
	Window   time.Duration `yaml:"window"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8080,
			PingMessage: "ping",
		},
		Transport: TransportConfig{
			Mode: "http",
		},
		Store: StoreConfig{
			Driver:   "sqlite",
			FilePath: "data/reports.json",
		},
		DB: DBConfig{
			Path: "civicreport.db",
		},
		Media: MediaConfig{
			Dir:       "public/uploads",
			URLPrefix: "/uploads",
		},
		Lifecycle: LifecycleConfig{
			Enabled:          true,
			AcknowledgeAfter: 1200 * time.Millisecond,
			ProgressAfter:    4200 * time.Millisecond,
			ResolveAfter:     12 * time.Second,
		},
		RateLimit: RateLimitConfig{
			Limit:  20,
			Window: time.Minute,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from .env, an optional YAML file and environment variables.
func Load() (Config, error) {
	// A missing .env is fine; real environment variables win over it.
	_ = godotenv.Load()

	cfg := Default()

	if path := os.Getenv("CIVIC_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if host := os.Getenv("CIVIC_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("CIVIC_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid CIVIC_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if msg := os.Getenv("PING_MESSAGE"); msg != "" {
		cfg.Server.PingMessage = msg
	}
	if mode := os.Getenv("CIVIC_TRANSPORT"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if driver := os.Getenv("CIVIC_STORE_DRIVER"); driver != "" {
		cfg.Store.Driver = driver
	}
	if file := os.Getenv("CIVIC_STORE_FILE"); file != "" {
		cfg.Store.FilePath = file
	}
	if dbPath := os.Getenv("CIVIC_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if dir := os.Getenv("CIVIC_MEDIA_DIR"); dir != "" {
		cfg.Media.Dir = dir
	}
	if v := os.Getenv("CIVIC_LIFECYCLE_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid CIVIC_LIFECYCLE_ENABLED: %w", err)
		}
		cfg.Lifecycle.Enabled = enabled
	}
	if v := os.Getenv("CIVIC_LIFECYCLE_CANCEL_ON_EDIT"); v != "" {
		cancel, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid CIVIC_LIFECYCLE_CANCEL_ON_EDIT: %w", err)
		}
		cfg.Lifecycle.CancelOnStatusEdit = cancel
	}
	if url := os.Getenv("CIVIC_REDIS_URL"); url != "" {
		cfg.RateLimit.RedisURL = url
	}
	if v := os.Getenv("CIVIC_RATE_LIMIT"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid CIVIC_RATE_LIMIT: %w", err)
		}
		cfg.RateLimit.Limit = limit
	}
	if level := os.Getenv("CIVIC_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if path := os.Getenv("CIVIC_LOG_PATH"); path != "" {
		cfg.Log.Path = path
	}
	return nil
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	switch c.Transport.Mode {
	case "http", "stdio":
	default:
		return fmt.Errorf("invalid transport mode %q", c.Transport.Mode)
	}
	switch c.Store.Driver {
	case "sqlite", "file":
	default:
		return fmt.Errorf("invalid store driver %q", c.Store.Driver)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if strings.TrimSpace(c.Media.URLPrefix) == "" {
		return fmt.Errorf("media url prefix must not be empty")
	}
	l := c.Lifecycle
	if l.AcknowledgeAfter <= 0 {
		return fmt.Errorf("lifecycle acknowledge_after must be positive, got %s", l.AcknowledgeAfter)
	}
	if l.ProgressAfter <= l.AcknowledgeAfter {
		return fmt.Errorf("lifecycle progress_after (%s) must be after acknowledge_after (%s)", l.ProgressAfter, l.AcknowledgeAfter)
	}
	if l.ResolveAfter <= l.ProgressAfter {
		return fmt.Errorf("lifecycle resolve_after (%s) must be after progress_after (%s)", l.ResolveAfter, l.ProgressAfter)
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
