// Package logging wires log/slog for the console: a text handler on stdout,
// a JSON handler on a weekly rotating file, and package-level helpers so
// callers never thread a logger through every constructor.
package logging

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

type LoggingService struct {
	Logger   *slog.Logger
	rotating *RotatingLogger
}

// Options controls where and how much the console logs
type Options struct {
	Dir            string
	Level          string
	RetentionWeeks int
	MaxFileSize    int64
	ConsoleOnly    bool // CLI runs log to stderr only
}

var (
	DefaultLoggingService *LoggingService
	fallbackOnce          sync.Once
	fallbackLogger        *slog.Logger
)

// Init builds the global logger from opts and installs it as slog's default
func Init(opts Options) *LoggingService {
	level := ParseLevel(opts.Level)

	if opts.ConsoleOnly || opts.Dir == "" {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		DefaultLoggingService = &LoggingService{Logger: logger}
		slog.SetDefault(logger)
		return DefaultLoggingService
	}

	logger, rotating := newFileAndConsoleLogger(opts.Dir, level, opts.RetentionWeeks, opts.MaxFileSize)
	DefaultLoggingService = &LoggingService{Logger: logger, rotating: rotating}
	slog.SetDefault(logger)
	return DefaultLoggingService
}

// Close flushes and closes the rotating file, if any
func (s *LoggingService) Close() error {
	if s == nil || s.rotating == nil {
		return nil
	}
	return s.rotating.Close()
}

// ParseLevel maps LOG_LEVEL values onto slog levels, defaulting to info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// Logger returns the global logger, or a stderr fallback before Init
func Logger() *slog.Logger {
	if DefaultLoggingService != nil && DefaultLoggingService.Logger != nil {
		return DefaultLoggingService.Logger
	}
	fallbackOnce.Do(func() {
		fallbackLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	})
	return fallbackLogger
}

// Package-level functions for direct access

func Info(msg string, args ...any) {
	Logger().Info(msg, args...)
}

func Error(msg string, args ...any) {
	Logger().Error(msg, args...)
}

func Warn(msg string, args ...any) {
	Logger().Warn(msg, args...)
}

func Debug(msg string, args ...any) {
	Logger().Debug(msg, args...)
}
