// SPDX-License-Identifier: MPL-2.0

// Package logging builds the process logger: a log/slog front end over a
// charmbracelet/log handler writing to stderr.
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/log"
)

const (
	// FormatText is the human-readable default.
	FormatText Format = "text"
	// FormatJSON emits one JSON object per line.
	FormatJSON Format = "json"
	// FormatLogfmt emits logfmt key=value lines.
	FormatLogfmt Format = "logfmt"

	defaultPrefix = "launchgate"
)

var (
	// ErrInvalidLevel is returned for an unrecognized level name.
	ErrInvalidLevel = errors.New("invalid log level")
	// ErrInvalidFormat is returned for an unrecognized format name.
	ErrInvalidFormat = errors.New("invalid log format")
)

type (
	// Format selects the log line encoding.
	Format string

	// Options configures New.
	Options struct {
		// Level is one of debug, info, warn, error. Empty means info.
		Level string
		// Format is text, json or logfmt. Empty means text.
		Format Format
		// Timestamps adds a timestamp to every line.
		Timestamps bool
		// Prefix defaults to "launchgate".
		Prefix string
	}
)

// New returns a slog.Logger writing to w.
func New(w io.Writer, opts Options) (*slog.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	formatter, err := formatter(opts.Format)
	if err != nil {
		return nil, err
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = defaultPrefix
	}

	handler := log.NewWithOptions(w, log.Options{
		Prefix:          prefix,
		Level:           level,
		ReportTimestamp: opts.Timestamps,
		Formatter:       formatter,
	})
	return slog.New(handler), nil
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ParseLevel maps a level name to a charm log level. Empty means info.
func ParseLevel(s string) (log.Level, error) {
	if strings.TrimSpace(s) == "" {
		return log.InfoLevel, nil
	}
	level, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
	return level, nil
}

func formatter(f Format) (log.Formatter, error) {
	switch f {
	case "", FormatText:
		return log.TextFormatter, nil
	case FormatJSON:
		return log.JSONFormatter, nil
	case FormatLogfmt:
		return log.LogfmtFormatter, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, f)
	}
}
