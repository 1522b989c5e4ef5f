package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the process-wide structured logger. It is usable before InitLogger
// is called and writes to stderr until then.
var Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

// LogOptions configures InitLogger.
type LogOptions struct {
	Env   string // "production" switches to JSON output
	Level string // zerolog level name, defaults to "info"
	Dir   string // optional directory for a dated log file
}

// InitLogger initializes the logger
func InitLogger(opts LogOptions) error {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		lvl, err := zerolog.ParseLevel(opts.Level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = lvl
	}

	var out io.Writer = os.Stdout
	if opts.Env != "production" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0755); err != nil {
			return fmt.Errorf("failed to create logs directory: %w", err)
		}
		name := fmt.Sprintf("clomora-%s.log", time.Now().Format("2006-01-02"))
		file, err := os.OpenFile(filepath.Join(opts.Dir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		out = zerolog.MultiLevelWriter(out, file)
	}

	Logger = zerolog.New(out).Level(level).With().Timestamp().Str("app", AppName).Logger()
	return nil
}

// LogInfo logs an informational message
func LogInfo(format string, v ...interface{}) {
	Logger.Info().Msgf(format, v...)
}

// LogWarn logs a warning
func LogWarn(format string, v ...interface{}) {
	Logger.Warn().Msgf(format, v...)
}

// LogError logs an error message
func LogError(format string, v ...interface{}) {
	Logger.Error().Msgf(format, v...)
}

// LogDebug logs a debug message
func LogDebug(format string, v ...interface{}) {
	Logger.Debug().Msgf(format, v...)
}

// LogRequest logs HTTP request details
func LogRequest(method, path, ip, requestID string, status int, duration time.Duration) {
	Logger.Info().
		Str("method", method).
		Str("path", path).
		Str("ip", ip).
		Str("request_id", requestID).
		Int("status", status).
		Dur("duration", duration).
		Msg("request")
}

// LogErrorWithStack logs an error with stack trace
func LogErrorWithStack(err error, stack []byte) {
	Logger.Error().Err(err).Bytes("stack", stack).Msg("panic recovered")
}
