// Package common contains process-wide helpers shared by the binaries:
// logger construction and build metadata.
package common

import (
	"log/slog"
	"os"
)

// LoggingOpts controls the logger returned by SetupLogger.
type LoggingOpts struct {
	// Debug enables debug level messages.
	Debug bool

	// JSON switches the handler from text to JSON output.
	JSON bool

	// Service is attached to every record as the "service" attribute when set.
	Service string

	// Version is attached to every record as the "version" attribute when set.
	Version string
}

// SetupLogger creates a structured logger writing to stdout.
func SetupLogger(opts *LoggingOpts) *slog.Logger {
	logLevel := slog.LevelInfo
	if opts.Debug {
		logLevel = slog.LevelDebug
	}

	handlerOpts := &slog.HandlerOptions{Level: logLevel}

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(os.Stdout, handlerOpts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, handlerOpts)
	}

	logger := slog.New(handler)

	if opts.Service != "" {
		logger = logger.With("service", opts.Service)
	}

	if opts.Version != "" {
		logger = logger.With("version", opts.Version)
	}

	return logger
}
