package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Level represents the logging level
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

var levelNames = []string{"DEBUG", "INFO", "WARN", "ERROR", "FATAL"}

func (l Level) String() string {
	if l < DebugLevel || l > FatalLevel {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel converts a level name to a Level. "warning" is accepted for
// WARN and anything unknown means INFO.
func ParseLevel(level string) Level {
	name := strings.ToUpper(level)
	if name == "WARNING" {
		return WarnLevel
	}
	for i, n := range levelNames {
		if n == name {
			return Level(i)
		}
	}
	return InfoLevel
}

// Logger is the interface for logging operations
type Logger interface {
	Debug(format string, v ...any)
	Info(format string, v ...any)
	Warn(format string, v ...any)
	Error(format string, v ...any)
	Fatal(format string, v ...any)
}

// LogConfig holds configuration for the logger. Environment overrides are
// applied by the config package before it gets here.
type LogConfig struct {
	// Output destination: "file", "stderr", "discard", or empty to pick
	// stderr inside containers and a file otherwise
	Output string
	// Log level: "debug", "info", "warn", "error", "fatal"; empty means info
	Level string
	// FilePath for file output, default ~/.pdfsplit/pdfsplit.log
	FilePath string
}

type standardLogger struct {
	logger *log.Logger
	level  Level
}

// NewLogger creates a new logger based on the provided configuration
func NewLogger(config LogConfig) (Logger, error) {
	output := config.Output
	if output == "" {
		output = detectEnvironment()
	}

	var writer io.Writer
	switch output {
	case "stderr":
		writer = os.Stderr
	case "discard":
		writer = io.Discard
	case "file":
		file, err := openLogFile(config.FilePath)
		if err != nil {
			return nil, err
		}
		writer = file
	default:
		return nil, fmt.Errorf("invalid log output: %s (expected 'file', 'stderr' or 'discard')", output)
	}

	return NewWriterLogger(writer, ParseLevel(config.Level)), nil
}

// openLogFile opens path for appending, creating it and its directory
func openLogFile(path string) (*os.File, error) {
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(homeDir, ".pdfsplit", "pdfsplit.log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return file, nil
}

// NewWriterLogger creates a timestamped logger writing to w
func NewWriterLogger(w io.Writer, level Level) Logger {
	return &standardLogger{
		logger: log.New(w, "", log.LstdFlags),
		level:  level,
	}
}

// NewNoOpLogger creates a logger that discards all output (useful for tests)
func NewNoOpLogger() Logger {
	return &standardLogger{
		logger: log.New(io.Discard, "", 0),
		level:  FatalLevel,
	}
}

// detectEnvironment picks stderr in Docker or Kubernetes, a file otherwise
func detectEnvironment() string {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return "stderr"
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return "stderr"
	}
	return "file"
}

func (l *standardLogger) Debug(format string, v ...any) {
	l.log(DebugLevel, format, v...)
}

func (l *standardLogger) Info(format string, v ...any) {
	l.log(InfoLevel, format, v...)
}

func (l *standardLogger) Warn(format string, v ...any) {
	l.log(WarnLevel, format, v...)
}

func (l *standardLogger) Error(format string, v ...any) {
	l.log(ErrorLevel, format, v...)
}

// Fatal logs and exits with status 1 regardless of level
func (l *standardLogger) Fatal(format string, v ...any) {
	l.logger.Printf("[%s] %s", FatalLevel, fmt.Sprintf(format, v...))
	os.Exit(1)
}

func (l *standardLogger) log(level Level, format string, v ...any) {
	if level < l.level {
		return
	}
	l.logger.Printf("[%s] %s", level, fmt.Sprintf(format, v...))
}
