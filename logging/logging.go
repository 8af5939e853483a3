// Package logging provides the process-wide structured logger.
//
// Components obtain a child logger through WithComponent or WithTable so
// that every record carries where it came from:
//
//	log := logging.WithComponent("cache")
//	log.Debug("cleanup", "evicted", n)
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Level is a logging verbosity.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Config holds logger configuration.
type Config struct {
	Level  Level
	Format string    // "json" or "text"
	Output io.Writer // nil means stderr
}

var (
	logger   *slog.Logger
	loggerMu sync.RWMutex
	initOnce sync.Once
)

// Init replaces the global logger.
func Init(cfg Config) {
	var out io.Writer = os.Stderr
	if cfg.Output != nil {
		out = cfg.Output
	}

	opts := &slog.HandlerOptions{Level: toSlogLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	loggerMu.Lock()
	logger = slog.New(handler)
	loggerMu.Unlock()
}

// ParseLevel maps a case-insensitive level name, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return LevelDebug
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

func toSlogLevel(l Level) slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GetLogger returns the global logger, creating a warn-level stderr logger
// on first use if Init was never called.
func GetLogger() *slog.Logger {
	initOnce.Do(func() {
		loggerMu.RLock()
		ready := logger != nil
		loggerMu.RUnlock()
		if !ready {
			Init(Config{Level: LevelWarn})
		}
	})

	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

// WithComponent returns a logger tagged with a storage component name.
func WithComponent(name string) *slog.Logger {
	return GetLogger().With("component", name)
}

// WithTable returns a logger tagged with a table name.
func WithTable(name string) *slog.Logger {
	return GetLogger().With("table", name)
}

// WithSession returns a logger tagged with a session (script channel) id.
func WithSession(id int) *slog.Logger {
	return GetLogger().With("session", id)
}
