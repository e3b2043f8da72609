package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	pkgconfig "github.com/goran-ethernal/ThorIndexor/pkg/config"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables overriding values from the configuration file.
const (
	EnvThorURL = "THOR_URL"
	EnvDBPath  = "THORINDEXOR_DB_PATH"
)

type decodeFunc func(data []byte, cfg *pkgconfig.Config) error

var decoders = map[string]decodeFunc{
	"yaml": func(data []byte, cfg *pkgconfig.Config) error {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		return dec.Decode(cfg)
	},
	"json": func(data []byte, cfg *pkgconfig.Config) error {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		return dec.Decode(cfg)
	},
	"toml": func(data []byte, cfg *pkgconfig.Config) error {
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return fmt.Errorf("unknown keys: %v", undecoded)
		}
		return nil
	},
}

// LoadFromFile loads configuration from a .yaml, .yml, .json or .toml file.
// Unknown keys are rejected so that typos do not silently fall back to defaults.
func LoadFromFile(path string) (*pkgconfig.Config, error) {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if format == "yml" {
		format = "yaml"
	}

	if _, ok := decoders[format]; !ok {
		return nil, fmt.Errorf("unsupported config file format: %q (supported: .yaml, .yml, .json, .toml)", format)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Load(data, format)
}

// Load decodes configuration in the given format, applies environment overrides and defaults,
// and validates the result.
func Load(data []byte, format string) (*pkgconfig.Config, error) {
	decode, ok := decoders[format]
	if !ok {
		return nil, fmt.Errorf("unsupported config format: %q", format)
	}

	var cfg pkgconfig.Config
	if err := decode(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s config: %w", strings.ToUpper(format), err)
	}

	if url := strings.TrimSpace(os.Getenv(EnvThorURL)); url != "" {
		cfg.Thor.URL = url
	}
	if path := strings.TrimSpace(os.Getenv(EnvDBPath)); path != "" {
		cfg.DB.Path = path
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadEnv loads the dotenv files that exist into the process environment.
// Variables already set in the environment win.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	existing := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}

	if len(existing) == 0 {
		return nil
	}

	return godotenv.Load(existing...)
}
