package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/hast-app/hastauth"
	"github.com/hast-app/hastauth/api"
	"github.com/hast-app/hastauth/messages"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk shape of ~/.config/hastctl/config.yaml.
type fileConfig struct {
	Environment string            `yaml:"environment"`
	BaseURL     string            `yaml:"base_url"`
	Debug       *bool             `yaml:"debug"`
	Timeout     time.Duration     `yaml:"timeout"`
	Language    string            `yaml:"language"`
	RoleGate    *bool             `yaml:"role_gate"`
	Headers     map[string]string `yaml:"headers"`
	AuditLog    string            `yaml:"audit_log"`
	Store       storeConfig       `yaml:"store"`
}

type storeConfig struct {
	// Kind is sqlite (default), redis or memory.
	Kind        string `yaml:"kind"`
	Path        string `yaml:"path"`
	RedisAddr   string `yaml:"redis_addr"`
	RedisPrefix string `yaml:"redis_prefix"`
}

func defaultFileConfig() fileConfig {
	return fileConfig{
		Store: storeConfig{Kind: "sqlite", RedisPrefix: "hastctl"},
	}
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "hastctl", "config.yaml")
}

// loadFileConfig reads path (a missing file is not an error), then .env,
// then HAST_* environment overrides.
func loadFileConfig(path string) (fileConfig, error) {
	cfg := defaultFileConfig()

	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return fileConfig{}, fmt.Errorf("invalid config file %s: %w", path, err)
			}
		case explicit || !errors.Is(err, fs.ErrNotExist):
			return fileConfig{}, fmt.Errorf("read config file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fileConfig{}, fmt.Errorf("load .env: %w", err)
	}
	if err := applyEnvOverrides(&cfg); err != nil {
		return fileConfig{}, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *fileConfig) error {
	if v := os.Getenv("HAST_ENV"); v != "" {
		cfg.Environment = v
	}
	if v := os.Getenv("HAST_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("HAST_DEBUG"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("HAST_DEBUG: %w", err)
		}
		cfg.Debug = &b
	}
	if v := os.Getenv("HAST_STORE"); v != "" {
		cfg.Store.Kind = v
	}
	if v := os.Getenv("HAST_REDIS_ADDR"); v != "" {
		cfg.Store.RedisAddr = v
	}
	return nil
}

// clientConfig turns the file config into a validated hastauth.Config.
func (fc fileConfig) clientConfig() (hastauth.Config, error) {
	env, err := api.ParseEnvironment(fc.Environment)
	if err != nil {
		return hastauth.Config{}, err
	}
	cfg, err := hastauth.ConfigForEnvironment(env)
	if err != nil {
		return hastauth.Config{}, err
	}

	if fc.BaseURL != "" {
		cfg.API.BaseURL = strings.TrimRight(fc.BaseURL, "/")
	}
	if fc.Debug != nil {
		cfg.Debug = *fc.Debug
	}
	if fc.Timeout > 0 {
		cfg.API.Timeout = fc.Timeout
	}
	if fc.RoleGate != nil {
		cfg.RoleGate.Enabled = *fc.RoleGate
	}
	cfg.API.Headers = fc.Headers

	switch strings.ToLower(fc.Language) {
	case "", "vi":
	case "en":
		cfg.Messages = messages.English()
	default:
		return hastauth.Config{}, fmt.Errorf("unknown language %q", fc.Language)
	}

	if err := cfg.Validate(); err != nil {
		return hastauth.Config{}, err
	}
	return cfg, nil
}
