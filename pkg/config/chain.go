package config

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/goran-ethernal/ThorIndexor/internal/common"
)

// ThorConfig points the REST client at a Thor node.
type ThorConfig struct {
	URL string `yaml:"url" json:"url" toml:"url"`

	// RequestTimeout bounds a single attempt of a REST call.
	RequestTimeout common.Duration `yaml:"request_timeout" json:"request_timeout" toml:"request_timeout"`

	// Retry is optional, without it every call is attempted once.
	Retry *RetryConfig `yaml:"retry,omitempty" json:"retry,omitempty" toml:"retry,omitempty"`

	HeaderCache *HeaderCacheConfig `yaml:"header_cache,omitempty" json:"header_cache,omitempty" toml:"header_cache,omitempty"`
}

func (t *ThorConfig) ApplyDefaults() {
	if t.RequestTimeout.Duration == 0 {
		t.RequestTimeout = common.NewDuration(10 * time.Second)
	}
	if t.Retry != nil {
		t.Retry.ApplyDefaults()
	}
}

func (t *ThorConfig) Validate() error {
	if t.RequestTimeout.Duration < 0 {
		return errors.New("thor.request_timeout must not be negative")
	}
	if t.Retry != nil {
		return t.Retry.Validate()
	}
	return nil
}

// RetryConfig controls exponential backoff between attempts of a failed REST call.
type RetryConfig struct {
	// MaxAttempts counts the first attempt too.
	MaxAttempts       int             `yaml:"max_attempts" json:"max_attempts" toml:"max_attempts"`
	InitialBackoff    common.Duration `yaml:"initial_backoff" json:"initial_backoff" toml:"initial_backoff"`
	MaxBackoff        common.Duration `yaml:"max_backoff" json:"max_backoff" toml:"max_backoff"`
	BackoffMultiplier float64         `yaml:"backoff_multiplier" json:"backoff_multiplier" toml:"backoff_multiplier"`
}

func (r *RetryConfig) ApplyDefaults() {
	if r.MaxAttempts == 0 {
		r.MaxAttempts = 5
	}
	if r.InitialBackoff.Duration == 0 {
		r.InitialBackoff = common.NewDuration(time.Second)
	}
	if r.MaxBackoff.Duration == 0 {
		r.MaxBackoff = common.NewDuration(30 * time.Second)
	}
	if r.BackoffMultiplier == 0 {
		r.BackoffMultiplier = 2
	}
}

func (r *RetryConfig) Validate() error {
	switch {
	case r.MaxAttempts < 1:
		return errors.New("thor.retry.max_attempts must be at least 1")
	case r.BackoffMultiplier < 1:
		return errors.New("thor.retry.backoff_multiplier must be at least 1")
	case r.MaxBackoff.Duration < r.InitialBackoff.Duration:
		return errors.New("thor.retry.max_backoff must not be shorter than initial_backoff")
	}
	return nil
}

// HeaderCacheConfig configures the leveldb cache of block headers older than the reversible window.
type HeaderCacheConfig struct {
	// Path is the leveldb directory. Empty keeps the cache in memory.
	Path string `yaml:"path" json:"path" toml:"path"`
}

// EngineConfig configures the reversible indexing engine shared by all indexers.
type EngineConfig struct {
	ReversibleWindow uint32 `yaml:"reversible_window" json:"reversible_window" toml:"reversible_window"`

	// SamplingInterval is the pause of the processing loop once an indexer caught up with the head.
	SamplingInterval common.Duration `yaml:"sampling_interval" json:"sampling_interval" toml:"sampling_interval"`

	// ForkBlocks are hard-fork heights. Fast-forward stops on them even when it could skip ahead.
	ForkBlocks []uint32 `yaml:"fork_blocks,omitempty" json:"fork_blocks,omitempty" toml:"fork_blocks,omitempty"`
}

func (e *EngineConfig) ApplyDefaults() {
	if e.ReversibleWindow == 0 {
		e.ReversibleWindow = DefaultReversibleWindow
	}
	if e.SamplingInterval.Duration == 0 {
		e.SamplingInterval = common.NewDuration(time.Second)
	}
	slices.Sort(e.ForkBlocks)
	e.ForkBlocks = slices.Compact(e.ForkBlocks)
}

func (e *EngineConfig) Validate() error {
	if e.ReversibleWindow == 0 || e.ReversibleWindow > MaxReversibleWindow {
		return fmt.Errorf("engine.reversible_window must be between 1 and %d", MaxReversibleWindow)
	}
	if e.SamplingInterval.Duration <= 0 {
		return errors.New("engine.sampling_interval must be positive")
	}
	return nil
}

// WatcherConfig enables the standalone chain watcher that tracks the trunk and reports forks.
type WatcherConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled" toml:"enabled"`

	// Redis publishes head and fork events when set.
	Redis *RedisConfig `yaml:"redis,omitempty" json:"redis,omitempty" toml:"redis,omitempty"`
}

// RedisConfig holds the connection of the Redis notifier.
type RedisConfig struct {
	// URL is a redis:// or rediss:// URL.
	URL string `yaml:"url" json:"url" toml:"url"`

	// Password overrides the one in URL.
	Password string `yaml:"password,omitempty" json:"password,omitempty" toml:"password,omitempty"`

	Channel string `yaml:"channel" json:"channel" toml:"channel"`
}

func (w *WatcherConfig) ApplyDefaults() {
	if w.Redis != nil && w.Redis.Channel == "" {
		w.Redis.Channel = "thorindexor:chain"
	}
}

func (w *WatcherConfig) Validate() error {
	if w.Redis != nil && w.Redis.URL == "" {
		return errors.New("watcher.redis.url is required when redis is configured")
	}
	return nil
}
