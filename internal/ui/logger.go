// Package ui provides terminal UI components and styling for vecdoc.
package ui

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// InitLogger initializes the charm logger with default settings.
// Logs go to stderr; stdout carries command output and bridge responses.
func InitLogger() {
	SetOutput(os.Stderr)
	log.SetLevel(log.InfoLevel)
	log.SetReportCaller(false)
	log.SetReportTimestamp(false)
}

// SetOutput redirects log output.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

// SetDebug enables debug logging.
func SetDebug(enabled bool) {
	if enabled {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}
