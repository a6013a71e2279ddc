// Package logger configures charmbracelet/log for the language server.
// Stdout carries the protocol stream, so logs go to stderr or a file.
package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// New creates a logger writing to w at level.
func New(w io.Writer, prefix string, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Prefix:          prefix,
		Level:           level,
		ReportTimestamp: true,
		Formatter:       log.TextFormatter,
	})
}

// Setup installs the default logger. An empty file logs to stderr. The
// returned closer releases the log file, if any.
func Setup(level, file string) (io.Closer, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var (
		w      io.Writer = os.Stderr
		closer io.Closer = nopCloser{}
	)

	if file != "" {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}

		w, closer = f, f
	}

	log.SetDefault(New(w, "wordcomplete", lvl))

	return closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
