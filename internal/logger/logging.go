// Package logger configures charmbracelet/log for strokecheck. Every logger writes to
// stderr, since stdout carries reports and IPC messages.
package logger

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// New creates a charm logger at the global log level.
func New(prefix string) *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          prefix,
		ReportCaller:    false,
		ReportTimestamp: false,
		Formatter:       log.TextFormatter,
		Level:           log.GetLevel(),
	})
}

// NewWithConfig creates a charm logger writing to w with custom options.
func NewWithConfig(w io.Writer, prefix string, level log.Level, caller bool, showTimestamp bool, fmt log.Formatter) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Prefix:          prefix,
		Level:           level,
		ReportCaller:    caller,
		ReportTimestamp: showTimestamp,
		Formatter:       fmt,
	})
}

// Setup installs the default logger. debug forces debug level with caller and timestamps;
// otherwise level is parsed from config and falls back to warn.
func Setup(level string, debug bool) *log.Logger {
	if debug {
		l := NewWithConfig(os.Stderr, "", log.DebugLevel, true, true, log.TextFormatter)
		log.SetDefault(l)
		return l
	}
	parsed, err := log.ParseLevel(level)
	if err != nil {
		parsed = log.WarnLevel
	}
	l := NewWithConfig(os.Stderr, "", parsed, false, false, log.TextFormatter)
	log.SetDefault(l)
	if err != nil {
		log.Warnf("Unknown log level %q, using warn", level)
	}
	return l
}
