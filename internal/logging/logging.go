package logging

import (
	"os"

	"github.com/charmbracelet/log"
)

// New builds the process logger. Unknown levels fall back to info.
func New(level string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "relseg",
	})
	if lvl, err := log.ParseLevel(level); err == nil {
		logger.SetLevel(lvl)
	}
	return logger
}
