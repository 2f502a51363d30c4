// Package common holds process-wide helpers shared by the SDK binaries:
// logger setup and build metadata.
package common

import (
	"log/slog"
	"os"
)

// PackageName tags metrics and logs emitted by this module.
const PackageName = "erc8004-go"

// Version is set at build time via -ldflags.
var Version = "dev"

// LoggingOpts configures the process logger.
type LoggingOpts struct {
	// Debug lowers the log level to slog.LevelDebug.
	Debug bool

	// JSON switches from text to JSON output.
	JSON bool

	// Service is added as a "service" attribute to every record, if set.
	Service string

	// Version is added as a "version" attribute to every record, if set.
	Version string
}

// SetupLogger creates the process logger according to opts. Output goes to
// stderr so command results on stdout stay machine-readable.
func SetupLogger(opts *LoggingOpts) *slog.Logger {
	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
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
