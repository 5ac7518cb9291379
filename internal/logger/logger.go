// Package logger provides the process-wide structured logger.
//
// It is a thin wrapper over log/slog: Init configures level, format and
// destination from the loaded configuration, and the package-level
// Debug/Info/Warn/Error functions log through the current logger with
// slog-style key-value pairs. The level can be changed at runtime.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"

	"golang.org/x/term"
)

// Config selects level, format and destination for the process logger.
type Config struct {
	// Level is one of DEBUG, INFO, WARN, ERROR (case-insensitive).
	Level string

	// Format is "text" or "json".
	Format string

	// Output is "stdout", "stderr" or a file path (opened append).
	Output string
}

var (
	level   slog.LevelVar
	current atomic.Pointer[slog.Logger]
)

func init() {
	level.Set(slog.LevelInfo)
	current.Store(slog.New(textHandler(os.Stdout, isTerminal(os.Stdout))))
}

// Init configures the process logger. It is called once at startup;
// packages log through the package-level functions and never hold a
// logger themselves.
func Init(cfg Config) error {
	lvl, err := parseLevel(cfg.Level)
	if err != nil {
		return err
	}
	level.Set(lvl)

	w, err := openOutput(cfg.Output)
	if err != nil {
		return err
	}

	return initHandler(w, cfg.Format, isTerminal(w))
}

// InitWithWriter configures the logger to write to w. Used by tests to
// capture output; color is always off.
func InitWithWriter(w io.Writer, cfg Config) error {
	lvl, err := parseLevel(cfg.Level)
	if err != nil {
		return err
	}
	level.Set(lvl)
	return initHandler(w, cfg.Format, false)
}

func initHandler(w io.Writer, format string, color bool) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		current.Store(slog.New(textHandler(w, color)))
	case "json":
		current.Store(slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: &level})))
	default:
		return fmt.Errorf("unknown log format %q (want text or json)", format)
	}
	return nil
}

// SetLevel changes the log level at runtime.
func SetLevel(s string) error {
	lvl, err := parseLevel(s)
	if err != nil {
		return err
	}
	level.Set(lvl)
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "INFO":
		return slog.LevelInfo, nil
	case "DEBUG":
		return slog.LevelDebug, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q (want DEBUG, INFO, WARN or ERROR)", s)
	}
}

func openOutput(s string) (io.Writer, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	default:
		f, err := os.OpenFile(s, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		return f, nil
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Debug logs at DEBUG level with slog-style key-value pairs.
func Debug(msg string, args ...any) { current.Load().Debug(msg, args...) }

// Info logs at INFO level with slog-style key-value pairs.
func Info(msg string, args ...any) { current.Load().Info(msg, args...) }

// Warn logs at WARN level with slog-style key-value pairs.
func Warn(msg string, args ...any) { current.Load().Warn(msg, args...) }

// Error logs at ERROR level with slog-style key-value pairs.
func Error(msg string, args ...any) { current.Load().Error(msg, args...) }

// With returns a logger carrying the given attributes for callers that
// log the same fields repeatedly.
func With(args ...any) *slog.Logger { return current.Load().With(args...) }
