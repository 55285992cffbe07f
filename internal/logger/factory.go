package logger

import (
	"os"

	"github.com/charmbracelet/log"
)

// New creates a prefixed charm logger that respects the global log level
func New(prefix string) *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          prefix,
		ReportCaller:    false,
		ReportTimestamp: false,
		Formatter:       log.TextFormatter,
		Level:           log.GetLevel(),
	})
}
