// Package logger provides a minimal slog-based logging wrapper.
//
// The terminal belongs to the chat UI, so by default records only go to a
// log file.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Config describes logger settings.
type Config struct {
	Enabled bool
	Level   string
	Stderr  bool
	File    string
}

var (
	mu      sync.RWMutex
	base    *slog.Logger
	enabled = false
	file    *os.File
)

// Init initializes the logger with the provided config. Relative file paths
// are resolved against configDir.
func Init(cfg Config, configDir string) error {
	mu.Lock()
	defer mu.Unlock()

	closeFile()

	if !cfg.Enabled {
		enabled = false
		base = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
		return nil
	}

	var writers []io.Writer
	var initErr error
	if cfg.File != "" {
		path := expandPath(cfg.File, configDir)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("logger: create log dir: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			initErr = fmt.Errorf("logger: open log file: %w", err)
		} else {
			file = f
			writers = append(writers, f)
		}
	}
	if cfg.Stderr {
		writers = append(writers, os.Stderr)
	}
	if len(writers) == 0 {
		writers = append(writers, io.Discard)
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	base = slog.New(slog.NewTextHandler(io.MultiWriter(writers...), opts))
	enabled = true
	return initErr
}

// Close flushes and closes the log file, if any.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	closeFile()
	enabled = false
}

// closeFile must be called with mu held.
func closeFile() {
	if file != nil {
		_ = file.Close()
		file = nil
	}
}

// Debug logs a debug message.
func Debug(msg string, args ...any) {
	log(slog.LevelDebug, msg, args...)
}

// Info logs an info message.
func Info(msg string, args ...any) {
	log(slog.LevelInfo, msg, args...)
}

// Warn logs a warning message.
func Warn(msg string, args ...any) {
	log(slog.LevelWarn, msg, args...)
}

// Error logs an error message.
func Error(msg string, args ...any) {
	log(slog.LevelError, msg, args...)
}

func log(level slog.Level, msg string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()

	if !enabled || base == nil {
		return
	}
	base.Log(nil, level, msg, args...)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

func expandPath(path, configDir string) string {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	if filepath.IsAbs(path) {
		return path
	}
	if configDir != "" {
		return filepath.Join(configDir, path)
	}
	return path
}
