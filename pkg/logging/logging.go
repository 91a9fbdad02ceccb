// Package logging configures process-wide structured logging for kioskd.
//
// Usage:
//
//	logging.Setup()                                    // from LOG_LEVEL and LOG_FORMAT
//	logging.SetupWith(os.Stderr, slog.LevelDebug, "")  // explicit
//
// Environment variables:
//
//	LOG_LEVEL:  debug, info, warn, error (default: info)
//	LOG_FORMAT: text (colored, default) or json
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// Setup configures logging from LOG_LEVEL and LOG_FORMAT.
func Setup() {
	SetupWith(os.Stderr, ParseLevel(os.Getenv("LOG_LEVEL")), os.Getenv("LOG_FORMAT"))
}

// SetupWithLevel configures colored logging at the given level.
func SetupWithLevel(level slog.Level) {
	SetupWith(os.Stderr, level, FormatText)
}

// SetupWith installs a default logger writing to w.
func SetupWith(w io.Writer, level slog.Level, format string) {
	slog.SetDefault(slog.New(NewHandler(w, level, format)))
}

// NewHandler returns a JSON handler for format "json" and a tint handler
// otherwise.
func NewHandler(w io.Writer, level slog.Level, format string) slog.Handler {
	if strings.EqualFold(format, FormatJSON) {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     level,
			AddSource: true,
		})
	}
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		AddSource:  true,
		NoColor:    !isTerminal(w),
	})
}

// ParseLevel maps a LOG_LEVEL value to a level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}
