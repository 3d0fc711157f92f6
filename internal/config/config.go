package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Settings is the model endpoint record the plugin UI edits.
type Settings struct {
	Provider string `yaml:"provider" json:"provider,omitempty"`
	Host     string `yaml:"host" json:"host"`
	APIKey   string `yaml:"api_key" json:"apiKey"`
	Model    string `yaml:"model" json:"model"`
}

// Complete reports whether every field a request needs is set.
func (s Settings) Complete() bool {
	return strings.TrimSpace(s.Host) != "" && strings.TrimSpace(s.Model) != ""
}

// Merge returns s with the non-empty fields of o applied.
func (s Settings) Merge(o Settings) Settings {
	if o.Provider != "" {
		s.Provider = o.Provider
	}
	if o.Host != "" {
		s.Host = o.Host
	}
	if o.APIKey != "" {
		s.APIKey = o.APIKey
	}
	if o.Model != "" {
		s.Model = o.Model
	}
	return s
}

type Config struct {
	Model   Settings `yaml:"model"`
	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`
	Design struct {
		Tokens  string `yaml:"tokens"`  // design token table, embedded default when empty
		Catalog string `yaml:"catalog"` // component catalog, embedded default when empty
	} `yaml:"design"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

const (
	DefaultPath   = "figsiner.yaml"
	defaultDB     = "figsiner.db"
	defaultAddr   = "127.0.0.1:8787"
	defaultLevel  = "info"
	defaultVendor = "openai"
)

func defaults() *Config {
	var cfg Config
	cfg.Model.Provider = defaultVendor
	cfg.Storage.Path = defaultDB
	cfg.Server.Addr = defaultAddr
	cfg.Log.Level = defaultLevel
	return &cfg
}

// LoadConfig reads .env, then the YAML file at path, then FIGSINER_*
// environment overrides. A missing file leaves the defaults in place.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	// 2. Load YAML config
	cfg := defaults()
	if path != "" {
		file, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(file, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		}
	}

	// 3. Override with Environment Variables if present
	overrides := []struct {
		env string
		dst *string
	}{
		{"FIGSINER_PROVIDER", &cfg.Model.Provider},
		{"FIGSINER_HOST", &cfg.Model.Host},
		{"FIGSINER_API_KEY", &cfg.Model.APIKey},
		{"FIGSINER_MODEL", &cfg.Model.Model},
		{"FIGSINER_DB", &cfg.Storage.Path},
		{"FIGSINER_LOG_LEVEL", &cfg.Log.Level},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.dst = v
		}
	}

	return cfg, nil
}

// LogLevel parses Log.Level, falling back to info.
func (c *Config) LogLevel() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return l
}
