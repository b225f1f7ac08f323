// Package config loads qrform settings from a YAML file, a .env file and
// the environment, in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/cristianadrielbraun/qrform/internal/debounce"
	"github.com/cristianadrielbraun/qrform/internal/form"
)

type LogConfig struct {
	Directory  string `yaml:"directory"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	MaxBackups int    `yaml:"maxBackups"`
	Compress   bool   `yaml:"compress"`
}

type ServerConfig struct {
	Addr       string `yaml:"addr"`
	StorageDir string `yaml:"storageDir"`
}

type Config struct {
	BaseURL        string            `yaml:"baseURL"`
	RequestTimeout time.Duration     `yaml:"requestTimeout"`
	Debounce       time.Duration     `yaml:"debounce"`
	CleanupTimeout time.Duration     `yaml:"cleanupTimeout"`
	OutputDir      string            `yaml:"outputDir"`
	Form           map[string]string `yaml:"form"`
	Logs           LogConfig         `yaml:"logs"`
	Server         ServerConfig      `yaml:"server"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		BaseURL:        "http://localhost:8080",
		RequestTimeout: 30 * time.Second,
		Debounce:       debounce.DefaultDelay,
		CleanupTimeout: 5 * time.Second,
		OutputDir:      ".",
		Logs: LogConfig{
			MaxSizeMB:  25,
			MaxAgeDays: 7,
			MaxBackups: 5,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// Load reads path (optional), then .env and the environment. An empty path
// means defaults only; a path that does not exist is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return cfg, err
		}
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return cfg, fmt.Errorf("decode %s: %w", path, err)
		}
		baseDir := filepath.Dir(path)
		cfg.OutputDir = resolvePath(baseDir, cfg.OutputDir)
		cfg.Logs.Directory = resolvePath(baseDir, cfg.Logs.Directory)
		cfg.Server.StorageDir = resolvePath(baseDir, cfg.Server.StorageDir)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	applyDefaults(&cfg)
	return cfg, nil
}

func resolvePath(baseDir, p string) string {
	p = strings.TrimSpace(p)
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(baseDir, p))
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("QRFORM_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("QRFORM_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv("QRFORM_LOG_DIR"); v != "" {
		cfg.Logs.Directory = v
	}
	if v := os.Getenv("QRFORM_DEBOUNCE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("QRFORM_DEBOUNCE: %w", err)
		}
		cfg.Debounce = d
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Addr = ":" + port
	}
	return nil
}

func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = def.RequestTimeout
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = def.Debounce
	}
	if cfg.CleanupTimeout <= 0 {
		cfg.CleanupTimeout = def.CleanupTimeout
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = def.OutputDir
	}
	if cfg.Logs.MaxSizeMB <= 0 {
		cfg.Logs.MaxSizeMB = def.Logs.MaxSizeMB
	}
	if cfg.Logs.MaxAgeDays <= 0 {
		cfg.Logs.MaxAgeDays = def.Logs.MaxAgeDays
	}
	if cfg.Logs.MaxBackups <= 0 {
		cfg.Logs.MaxBackups = def.Logs.MaxBackups
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = def.Server.Addr
	}
}

// FormState applies the configured field values on top of form.Defaults.
func (c Config) FormState() (form.State, error) {
	st := form.Defaults()
	fields := make([]string, 0, len(c.Form))
	for k := range c.Form {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	for _, field := range fields {
		if err := st.Set(field, c.Form[field]); err != nil {
			return st, fmt.Errorf("form.%s: %w", field, err)
		}
	}
	return st, nil
}
