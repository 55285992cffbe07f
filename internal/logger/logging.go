// Package logger provides modifications to charmbracelet/log's default logger to be used in various files/packages.
//
// Everything logs to stderr; stdout belongs to the IPC protocol.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Setup configures the global charm logger. Unknown levels fall back to info
// and unknown formats to text.
func Setup(level, format string, timestamp bool) {
	SetupWriter(os.Stderr, level, format, timestamp)
}

// SetupWriter is Setup with an explicit destination.
func SetupWriter(w io.Writer, level, format string, timestamp bool) {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = log.InfoLevel
	}
	logger := log.NewWithOptions(w, log.Options{
		Level:           lvl,
		ReportTimestamp: timestamp,
		Formatter:       ParseFormatter(format),
	})
	log.SetDefault(logger)
	if err != nil && level != "" {
		log.Warnf("Unknown log level %q, using info", level)
	}
}

// ParseFormatter maps "text", "json" and "logfmt" to charm formatters.
func ParseFormatter(format string) log.Formatter {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}
