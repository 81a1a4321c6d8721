package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Storage struct {
		Backend    string `yaml:"backend" env:"BACKEND"`
		SQLitePath string `yaml:"sqlite_path" env:"SQLITE_PATH"`
		Key        string `yaml:"key" env:"KEY"`
		Redis      struct {
			Addr     string `yaml:"addr" env:"ADDR"`
			Password string `yaml:"password" env:"PASSWORD"`
			DB       int    `yaml:"db" env:"DB"`
		} `yaml:"redis" envPrefix:"REDIS_"`
	} `yaml:"storage" envPrefix:"STORAGE_"`
	Undo struct {
		WindowMs int `yaml:"window_ms" env:"WINDOW_MS"`
	} `yaml:"undo" envPrefix:"UNDO_"`
	View struct {
		DateLayout     string `yaml:"date_layout" env:"DATE_LAYOUT"`
		DateTimeLayout string `yaml:"datetime_layout" env:"DATETIME_LAYOUT"`
		Timezone       string `yaml:"timezone" env:"TIMEZONE"`
	} `yaml:"view" envPrefix:"VIEW_"`
	Logging struct {
		Level string `yaml:"level" env:"LEVEL"`
		File  string `yaml:"file" env:"FILE"`
	} `yaml:"logging" envPrefix:"LOGGING_"`
	Server struct {
		Port         int    `yaml:"port" env:"PORT"`
		TemplatesDir string `yaml:"templates_dir" env:"TEMPLATES_DIR"`
	} `yaml:"server" envPrefix:"SERVER_"`
}

// EnvPrefix is prepended to every environment override, e.g. STRATEGY_SERVER_PORT.
const EnvPrefix = "STRATEGY_"

func Default() *Config {
	var cfg Config
	cfg.Storage.Backend = "sqlite"
	cfg.Storage.SQLitePath = "strategies.db"
	cfg.Storage.Key = "trading_strategies_v1"
	cfg.Undo.WindowMs = 6000
	cfg.View.DateLayout = "1/2/2006"
	cfg.View.DateTimeLayout = "1/2/2006, 3:04:05 PM"
	cfg.Logging.Level = "info"
	cfg.Server.Port = 8080
	cfg.Server.TemplatesDir = "internal/web/templates"
	return &cfg
}

// Load reads the YAML file at path on top of the defaults, then applies
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		defer f.Close()
		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}
	return cfg, nil
}

func (c *Config) UndoWindow() time.Duration {
	return time.Duration(c.Undo.WindowMs) * time.Millisecond
}

// Location resolves the configured timezone, defaulting to local time.
func (c *Config) Location() (*time.Location, error) {
	if c.View.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.View.Timezone)
}
