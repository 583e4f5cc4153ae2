// Package logger wraps log/slog with a process-wide structured logger.
//
// Library packages log through L(); command line tools call Init once after
// reading their configuration. Until then L() discards debug output and writes
// info and above as text to stderr.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// Config selects the level and output format.
type Config struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level"`
	// Format is text or json.
	Format string `mapstructure:"format"`
}

// DefaultConfig logs info and above as text.
var DefaultConfig = Config{Level: "info", Format: "text"}

var global atomic.Pointer[slog.Logger]

func init() {
	global.Store(New(DefaultConfig, os.Stderr))
}

// ParseLevel maps a level name to slog.Level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds a logger writing to w.
func New(cfg Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	var h slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

// Init replaces the global logger.
func Init(cfg Config, w io.Writer) *slog.Logger {
	l := New(cfg, w)
	global.Store(l)
	return l
}

// L returns the global logger.
func L() *slog.Logger {
	return global.Load()
}
