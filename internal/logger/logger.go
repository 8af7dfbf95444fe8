package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	mu      sync.RWMutex
	current *slog.Logger
	enabled bool
	logFile *os.File
)

// Init initializes the logger.
func Init(on bool, levelStr, file string, console bool) error {
	mu.Lock()
	defer mu.Unlock()

	closeFileLocked()
	if !on {
		current = nil
		enabled = false
		return nil
	}

	var writers []io.Writer
	if file != "" {
		dir := filepath.Dir(file)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create log directory: %w", err)
			}
		}
		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		logFile = f
		writers = append(writers, f)
	}
	if console || len(writers) == 0 {
		writers = append(writers, os.Stdout)
	}

	current = slog.New(slog.NewTextHandler(io.MultiWriter(writers...), &slog.HandlerOptions{
		Level: ParseLevel(levelStr),
	}))
	enabled = true
	return nil
}

// InitWriter points the logger at w.
func InitWriter(w io.Writer, levelStr string) {
	mu.Lock()
	defer mu.Unlock()
	closeFileLocked()
	current = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(levelStr)}))
	enabled = true
}

// Close releases the log file, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	return closeFileLocked()
}

func closeFileLocked() error {
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

// ParseLevel maps a config string to a slog level. Unknown values are info.
func ParseLevel(levelStr string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
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

func logf(level slog.Level, format string, args ...interface{}) {
	mu.RLock()
	l, on := current, enabled
	mu.RUnlock()
	if !on || l == nil || !l.Enabled(context.Background(), level) {
		return
	}
	l.Log(context.Background(), level, fmt.Sprintf(format, args...))
}

// With returns a structured logger carrying attrs, or a discard logger when
// logging is disabled.
func With(args ...any) *slog.Logger {
	mu.RLock()
	l, on := current, enabled
	mu.RUnlock()
	if !on || l == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return l.With(args...)
}

// Debugf logs a debug message.
func Debugf(format string, args ...interface{}) { logf(slog.LevelDebug, format, args...) }

// Infof logs an info message.
func Infof(format string, args ...interface{}) { logf(slog.LevelInfo, format, args...) }

// Warnf logs a warning.
func Warnf(format string, args ...interface{}) { logf(slog.LevelWarn, format, args...) }

// Errorf logs an error message.
func Errorf(format string, args ...interface{}) { logf(slog.LevelError, format, args...) }
