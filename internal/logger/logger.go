package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the structured logger handed to components.
type Logger = *log.Logger

// Config holds logger configuration
type Config struct {
	Level  string // debug, info, warn, error
	Format string // text, json, logfmt
	File   string // optional rotated log file
	Debug  bool   // forces debug level and caller reporting

	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int

	// Output replaces stderr as the console writer.
	Output io.Writer
}

var (
	mu         sync.RWMutex
	root       = newLogger(os.Stderr, log.InfoLevel, log.TextFormatter, false)
	fileWriter *lumberjack.Logger
)

func newLogger(w io.Writer, level log.Level, formatter log.Formatter, caller bool) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportCaller:    caller,
		ReportTimestamp: true,
		Level:           level,
		Prefix:          "agency",
		Formatter:       formatter,
	})
}

// Init replaces the global logger according to cfg.
func Init(cfg Config) error {
	level := log.InfoLevel
	if cfg.Level != "" {
		parsed, err := log.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}
	if cfg.Debug {
		level = log.DebugLevel
	}

	formatter, err := parseFormat(cfg.Format)
	if err != nil {
		return err
	}

	var writer io.Writer = os.Stderr
	if cfg.Output != nil {
		writer = cfg.Output
	}

	var rotating *lumberjack.Logger
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		rotating = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    orDefault(cfg.MaxSizeMB, 10), // megabytes
			MaxBackups: orDefault(cfg.MaxBackups, 3),
			MaxAge:     orDefault(cfg.MaxAgeDays, 28), // days
			Compress:   true,
		}
		writer = io.MultiWriter(writer, rotating)
	}

	mu.Lock()
	defer mu.Unlock()

	if fileWriter != nil {
		_ = fileWriter.Close()
	}
	fileWriter = rotating
	root = newLogger(writer, level, formatter, cfg.Debug)
	return nil
}

func parseFormat(format string) (log.Formatter, error) {
	switch strings.ToLower(format) {
	case "", "text":
		return log.TextFormatter, nil
	case "json":
		return log.JSONFormatter, nil
	case "logfmt":
		return log.LogfmtFormatter, nil
	default:
		return log.TextFormatter, fmt.Errorf("invalid log format %q", format)
	}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// Close flushes and closes the rotated log file, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	if fileWriter == nil {
		return nil
	}
	err := fileWriter.Close()
	fileWriter = nil
	return err
}

// Get returns the global logger.
func Get() Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root
}

// WithField returns a child logger carrying key=value on every entry.
func WithField(key string, value interface{}) Logger {
	return Get().With(key, value)
}

func WithFields(fields map[string]interface{}) Logger {
	keyvals := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		keyvals = append(keyvals, k, v)
	}
	return Get().With(keyvals...)
}

func Debug(msg string, keyvals ...interface{}) {
	Get().Debug(msg, keyvals...)
}

func Info(msg string, keyvals ...interface{}) {
	Get().Info(msg, keyvals...)
}

func Warn(msg string, keyvals ...interface{}) {
	Get().Warn(msg, keyvals...)
}

func Error(msg string, keyvals ...interface{}) {
	Get().Error(msg, keyvals...)
}
