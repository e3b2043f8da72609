// Package logger builds the zap loggers used by every component. Loggers derived from one
// another share a single atomic level, so a level change applies to the whole tree.
package logger

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	defaultLevel = "info"
	componentKey = "component"
)

// ValidLogLevels lists the level names accepted in configuration.
var ValidLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

// LoggingConfig is what a component logger needs from the configuration file.
type LoggingConfig interface {
	GetComponentLevel(component string) string
	GetDefaultLevel() string
	IsDevelopment() bool
}

// Logger is a zap.SugaredLogger that remembers its component and level.
type Logger struct {
	*zap.SugaredLogger

	atomicLevel zap.AtomicLevel
	component   string
}

// NewLogger builds a root logger. Development mode writes colored console output and
// adds stack traces to warnings, otherwise entries are JSON.
func NewLogger(level string, development bool) (*Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	z, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}

	return &Logger{SugaredLogger: z.Sugar(), atomicLevel: cfg.Level}, nil
}

// NewComponentLogger panics on an unknown level. Levels are validated with the configuration,
// so a bad one here is a programming error.
func NewComponentLogger(component, level string, development bool) *Logger {
	l, err := NewLogger(level, development)
	if err != nil {
		panic(fmt.Sprintf("logger for %s: %v", component, err))
	}
	return l.WithComponent(component)
}

// NewComponentLoggerFromConfig applies the level override of component, if any.
// A nil cfg logs at info in production mode.
func NewComponentLoggerFromConfig(component string, cfg LoggingConfig) *Logger {
	level, dev := defaultLevel, false
	if cfg != nil {
		level, dev = cfg.GetComponentLevel(component), cfg.IsDevelopment()
	}
	return NewComponentLogger(component, level, dev)
}

// NewNopLogger discards everything.
func NewNopLogger() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar(), atomicLevel: zap.NewAtomicLevel()}
}

func (l *Logger) derive(s *zap.SugaredLogger, component string) *Logger {
	return &Logger{SugaredLogger: s, atomicLevel: l.atomicLevel, component: component}
}

// WithComponent tags every entry with component. It is a no-op when l already carries it.
func (l *Logger) WithComponent(component string) *Logger {
	if l.component == component {
		return l
	}
	return l.derive(l.With(componentKey, component), component)
}

func (l *Logger) WithField(key string, value any) *Logger {
	return l.derive(l.With(key, value), l.component)
}

func (l *Logger) GetComponent() string { return l.component }
func (l *Logger) GetLevel() string     { return l.atomicLevel.Level().String() }

// SetLevel changes the level of l and of every logger sharing its root.
func (l *Logger) SetLevel(level string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}
	l.atomicLevel.SetLevel(lvl)
	return nil
}

// Close flushes buffered entries.
func (l *Logger) Close() error { return l.Sync() }

var defaultLogger = sync.OnceValue(func() *Logger {
	l, err := NewLogger("debug", true)
	if err != nil {
		panic(err)
	}
	return l
})

// GetDefaultLogger returns the process-wide development logger at debug level.
func GetDefaultLogger() *Logger { return defaultLogger() }
