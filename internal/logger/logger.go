package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alkime/scope/internal/config"
)

// SetupLogger configures structured logging based on environment.
// The returned closer releases the log file, if one was opened.
// While the TUI is on screen stdout belongs to it, so logs are
// written to cfg.LogFile or discarded entirely.
func SetupLogger(cfg *config.Config) (*slog.Logger, func() error) {
	// Determine log level
	logLevel := slog.LevelInfo
	if cfg.Env == "development" {
		logLevel = slog.LevelDebug
	}
	if cfg.LogLevel == "debug" {
		logLevel = slog.LevelDebug
	}

	var (
		out     io.Writer = io.Discard
		closeFn           = func() error { return nil }
	)

	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err == nil {
			if f, ferr := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); ferr == nil {
				out = f
				closeFn = f.Close
			}
		}
	}

	// Create JSON handler for structured logging
	//nolint:exhaustruct // Using default values for other HandlerOptions fields
	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: logLevel,
	})

	logger := slog.New(handler)

	// Set as default logger
	slog.SetDefault(logger)

	return logger, closeFn
}
