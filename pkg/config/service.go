package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goran-ethernal/ThorIndexor/internal/common"
	"github.com/goran-ethernal/ThorIndexor/internal/logger"
)

// LoggingConfig sets a default level and optional per-component overrides.
type LoggingConfig struct {
	// DefaultLevel is debug, info, warn or error.
	DefaultLevel string `yaml:"default_level" json:"default_level" toml:"default_level"`

	// Development switches to the colored console encoder with stack traces on warnings.
	Development bool `yaml:"development" json:"development" toml:"development"`

	// ComponentLevels keys are component names: thor-client, watcher, processor, fork-resolver,
	// store, header-cache, coordinator, maintenance, api.
	ComponentLevels map[string]string `yaml:"component_levels,omitempty" json:"component_levels,omitempty" toml:"component_levels,omitempty"`
}

func (l *LoggingConfig) ApplyDefaults() {
	if l.DefaultLevel == "" {
		l.DefaultLevel = "info"
	}
	if l.ComponentLevels == nil {
		l.ComponentLevels = make(map[string]string)
	}
}

func (l *LoggingConfig) Validate() error {
	var errs []error

	if _, ok := logger.ValidLogLevels[common.ToLowerWithTrim(l.DefaultLevel)]; l.DefaultLevel != "" && !ok {
		errs = append(errs, fmt.Errorf("logging.default_level %q must be one of: debug, info, warn, error",
			l.DefaultLevel))
	}

	for component, level := range l.ComponentLevels {
		if _, ok := common.AllComponents[common.ToLowerWithTrim(component)]; !ok {
			errs = append(errs, fmt.Errorf("logging.component_levels: unknown component %q", component))
			continue
		}
		if _, ok := logger.ValidLogLevels[common.ToLowerWithTrim(level)]; !ok {
			errs = append(errs, fmt.Errorf("logging.component_levels[%s] %q must be one of: debug, info, warn, error",
				component, level))
		}
	}

	return errors.Join(errs...)
}

// GetComponentLevel returns the override of the component, or the default level.
// A nil config logs at info.
func (l *LoggingConfig) GetComponentLevel(component string) string {
	if l == nil {
		return "info"
	}
	if level, ok := l.ComponentLevels[component]; ok {
		return common.ToLowerWithTrim(level)
	}
	return l.GetDefaultLevel()
}

func (l *LoggingConfig) GetDefaultLevel() string {
	if l == nil || l.DefaultLevel == "" {
		return "info"
	}
	return common.ToLowerWithTrim(l.DefaultLevel)
}

func (l *LoggingConfig) IsDevelopment() bool {
	return l != nil && l.Development
}

// MetricsConfig exposes the Prometheus registry over HTTP.
type MetricsConfig struct {
	Enabled       bool   `yaml:"enabled" json:"enabled" toml:"enabled"`
	ListenAddress string `yaml:"listen_address" json:"listen_address" toml:"listen_address"`
	Path          string `yaml:"path" json:"path" toml:"path"`
}

func (m *MetricsConfig) ApplyDefaults() {
	if m.ListenAddress == "" {
		m.ListenAddress = ":9090"
	}
	if m.Path == "" {
		m.Path = "/metrics"
	}
}

func (m *MetricsConfig) Validate() error {
	if m.Enabled && !strings.HasPrefix(m.Path, "/") {
		return fmt.Errorf("metrics.path %q must start with '/'", m.Path)
	}
	return nil
}

// APIConfig configures the read-only REST API.
type APIConfig struct {
	Enabled       bool            `yaml:"enabled" json:"enabled" toml:"enabled"`
	ListenAddress string          `yaml:"listen_address" json:"listen_address" toml:"listen_address"`
	ReadTimeout   common.Duration `yaml:"read_timeout" json:"read_timeout" toml:"read_timeout"`
	WriteTimeout  common.Duration `yaml:"write_timeout" json:"write_timeout" toml:"write_timeout"`
	IdleTimeout   common.Duration `yaml:"idle_timeout" json:"idle_timeout" toml:"idle_timeout"`
	CORS          CORSConfig      `yaml:"cors" json:"cors" toml:"cors"`
}

// CORSConfig lists the origins browsers may call the API from. "*" allows any.
type CORSConfig struct {
	Enabled        bool     `yaml:"enabled" json:"enabled" toml:"enabled"`
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins" toml:"allowed_origins"`
}

func (a *APIConfig) ApplyDefaults() {
	if a.ListenAddress == "" {
		a.ListenAddress = ":8080"
	}
	if a.ReadTimeout.Duration == 0 {
		a.ReadTimeout = common.NewDuration(15 * time.Second)
	}
	if a.WriteTimeout.Duration == 0 {
		a.WriteTimeout = common.NewDuration(15 * time.Second)
	}
	if a.IdleTimeout.Duration == 0 {
		a.IdleTimeout = common.NewDuration(time.Minute)
	}
	if a.CORS.Enabled && len(a.CORS.AllowedOrigins) == 0 {
		a.CORS.AllowedOrigins = []string{"*"}
	}
}

func (a *APIConfig) Validate() error {
	if a.Enabled && a.ListenAddress == "" {
		return errors.New("api.listen_address is required when the API is enabled")
	}
	return nil
}
