// Package config defines the configuration file of ThorIndexor. The same structure is
// decoded from YAML, JSON or TOML.
package config

import (
	"errors"
	"fmt"
	"net/url"
)

const (
	// DefaultReversibleWindow is the number of recent blocks that may still be replaced by a fork.
	DefaultReversibleWindow = 12
	MaxReversibleWindow     = 1000
	DefaultFlushThreshold   = 5000
)

// Config is the root of the configuration file.
type Config struct {
	Thor        ThorConfig         `yaml:"thor" json:"thor" toml:"thor"`
	Engine      EngineConfig       `yaml:"engine" json:"engine" toml:"engine"`
	DB          DatabaseConfig     `yaml:"db" json:"db" toml:"db"`
	Maintenance *MaintenanceConfig `yaml:"maintenance,omitempty" json:"maintenance,omitempty" toml:"maintenance,omitempty"`
	Watcher     *WatcherConfig     `yaml:"watcher,omitempty" json:"watcher,omitempty" toml:"watcher,omitempty"`
	Indexers    []IndexerConfig    `yaml:"indexers" json:"indexers" toml:"indexers"`
	Logging     *LoggingConfig     `yaml:"logging,omitempty" json:"logging,omitempty" toml:"logging,omitempty"`
	Metrics     *MetricsConfig     `yaml:"metrics,omitempty" json:"metrics,omitempty" toml:"metrics,omitempty"`
	API         *APIConfig         `yaml:"api,omitempty" json:"api,omitempty" toml:"api,omitempty"`
}

// section is implemented by every optional block of the file.
type section interface {
	ApplyDefaults()
	Validate() error
}

func (c *Config) sections() []section {
	s := []section{&c.Thor, &c.Engine, &c.DB}
	if c.Maintenance != nil {
		s = append(s, c.Maintenance)
	}
	if c.Watcher != nil {
		s = append(s, c.Watcher)
	}
	if c.Logging != nil {
		s = append(s, c.Logging)
	}
	if c.Metrics != nil {
		s = append(s, c.Metrics)
	}
	if c.API != nil {
		s = append(s, c.API)
	}
	for i := range c.Indexers {
		s = append(s, &c.Indexers[i])
	}
	return s
}

// ApplyDefaults fills every unset optional field. Absent optional sections stay nil.
func (c *Config) ApplyDefaults() {
	for _, s := range c.sections() {
		s.ApplyDefaults()
	}
}

// Validate reports every problem of the configuration at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Thor.URL == "" {
		errs = append(errs, errors.New("thor.url is required"))
	} else if u, err := url.Parse(c.Thor.URL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("thor.url: %q is not an absolute URL", c.Thor.URL))
	}

	for _, s := range c.sections() {
		if err := s.Validate(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(c.Indexers) == 0 {
		errs = append(errs, errors.New("at least one indexer must be configured"))
	}

	seen := make(map[string]int, len(c.Indexers))
	for i, idx := range c.Indexers {
		if first, dup := seen[idx.Name]; dup && idx.Name != "" {
			errs = append(errs, fmt.Errorf("indexers[%d]: duplicate indexer name %q (first at indexers[%d])",
				i, idx.Name, first))
			continue
		}
		seen[idx.Name] = i
	}

	return errors.Join(errs...)
}
