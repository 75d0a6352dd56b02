// Package logging provides the structured slog logger shared by the server and the CLI.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// Config selects level, encoding and destination.
type Config struct {
	Level  string `env:"LOG_LEVEL" default:"info"`
	Format string `env:"LOG_FORMAT" default:"json"`
	Output string `env:"LOG_OUTPUT" default:"stdout"`
}

// DefaultConfig returns info-level JSON to stdout.
func DefaultConfig() *Config {
	return &Config{Level: "info", Format: "json", Output: "stdout"}
}

// Logger wraps slog.Logger with doclib's subsystem helpers.
type Logger struct {
	*slog.Logger
}

// NewLogger builds a logger writing to cfg.Output ("stdout", "stderr" or "discard").
func NewLogger(cfg *Config) *Logger {
	return newLogger(cfg, outputWriter(cfg.Output))
}

func outputWriter(output string) io.Writer {
	switch strings.ToLower(output) {
	case "stderr":
		return os.Stderr
	case "discard", "none":
		return io.Discard
	default:
		return os.Stdout
	}
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

func newLogger(cfg *Config, writer io.Writer) *Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.String("timestamp", a.Value.Time().Format(time.RFC3339))
			}
			return a
		},
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "text", "console":
		handler = slog.NewTextHandler(writer, opts)
	default:
		handler = slog.NewJSONHandler(writer, opts)
	}
	return &Logger{Logger: slog.New(handler)}
}

// WithComponent tags every record with component.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{Logger: l.Logger.With("component", component)}
}

// WithContext adds the chi request id when ctx carries one.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	requestID := middleware.GetReqID(ctx)
	if requestID == "" {
		return l
	}
	return &Logger{Logger: l.Logger.With("request_id", requestID)}
}

// Session logs a browse session event.
func (l *Logger) Session(msg string, sessionID string, attrs ...slog.Attr) {
	l.Logger.Info(msg, withAttrs([]any{"session_id", sessionID}, attrs)...)
}

// SessionError logs a failed browse session operation.
func (l *Logger) SessionError(msg string, err error, sessionID string, attrs ...slog.Attr) {
	l.Logger.Error(msg, withAttrs([]any{"session_id", sessionID, "error", err.Error()}, attrs)...)
}

// Performance logs how long operation took.
func (l *Logger) Performance(operation string, duration time.Duration, attrs ...slog.Attr) {
	l.Logger.Info("performance", withAttrs([]any{"operation", operation, "duration_ms", duration.Milliseconds()}, attrs)...)
}

// SharePoint logs remote calls at info level.
func (l *Logger) SharePoint(msg string, args ...any) {
	l.Logger.Info(msg, append([]any{"subsystem", "sharepoint"}, args...)...)
}

// Database logs storage events at debug level.
func (l *Logger) Database(msg string, args ...any) {
	l.Logger.Debug(msg, append([]any{"subsystem", "database"}, args...)...)
}

func withAttrs(args []any, attrs []slog.Attr) []any {
	for _, attr := range attrs {
		args = append(args, attr)
	}
	return args
}

var defaultLogger *Logger

// SetDefault replaces the process-wide logger.
func SetDefault(logger *Logger) {
	defaultLogger = logger
}

// Default returns the process-wide logger, creating one from DefaultConfig on first use.
func Default() *Logger {
	if defaultLogger == nil {
		defaultLogger = NewLogger(DefaultConfig())
	}
	return defaultLogger
}
