package logger

import (
	"ai_detective/src/model"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

var (
	mu      sync.Mutex
	logFile *os.File
)

// InitLogger initializes the global logger with the provided configuration.
// Calling it again replaces the logger and closes a previously opened log file.
func InitLogger(config model.LogConfig) error {
	level, err := zerolog.ParseLevel(strings.ToLower(config.Level))
	if err != nil {
		return fmt.Errorf("invalid log level '%s': %w", config.Level, err)
	}

	output, file, err := openOutput(config)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()

	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = timeFormat(config.TimeFormat)

	if logFile != nil {
		_ = logFile.Close()
	}
	logFile = file

	Logger = zerolog.New(output).With().
		Timestamp().
		Caller().
		Logger()
	log.Logger = Logger

	Logger.Debug().
		Str("level", config.Level).
		Str("format", config.Format).
		Str("output", config.Output).
		Msg("Logger initialized successfully")

	return nil
}

func timeFormat(name string) string {
	switch strings.ToLower(name) {
	case "unix":
		return zerolog.TimeFormatUnix
	case "iso8601":
		return "2006-01-02T15:04:05.000Z07:00"
	default:
		return time.RFC3339
	}
}

// openOutput builds the writer for config.Output. "both" writes the console
// format to stderr and the configured format to the log file.
func openOutput(config model.LogConfig) (io.Writer, *os.File, error) {
	console := strings.ToLower(config.Format) == "console"
	format := func(w io.Writer) io.Writer {
		if console {
			return zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
		}
		return w
	}

	switch strings.ToLower(config.Output) {
	case "stdout":
		return format(os.Stdout), nil, nil
	case "file":
		file, err := openFile(config.FilePath)
		if err != nil {
			return nil, nil, err
		}
		return format(file), file, nil
	case "both":
		file, err := openFile(config.FilePath)
		if err != nil {
			return nil, nil, err
		}
		stderr := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		return zerolog.MultiLevelWriter(stderr, format(file)), file, nil
	case "discard":
		return io.Discard, nil, nil
	default:
		return format(os.Stderr), nil, nil
	}
}

func openFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file '%s': %w", path, err)
	}
	return file, nil
}

// Close releases the log file, if one is open, and logs to stderr again
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	return err
}

// GetLogger returns the configured logger instance
func GetLogger() *zerolog.Logger {
	return &Logger
}

// Component returns a child logger tagged with the subsystem name
func Component(name string) zerolog.Logger {
	return Logger.With().Str("component", name).Logger()
}

// Convenience methods for common logging patterns
func Info() *zerolog.Event {
	return Logger.Info()
}

func Debug() *zerolog.Event {
	return Logger.Debug()
}

func Warn() *zerolog.Event {
	return Logger.Warn()
}

func Error() *zerolog.Event {
	return Logger.Error()
}

func Fatal() *zerolog.Event {
	return Logger.Fatal()
}
