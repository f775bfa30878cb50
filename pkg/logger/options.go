package logger

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Format selects the handler a logger renders records with.
type Format string

const (
	// FormatText is slog's logfmt-style text handler.
	FormatText Format = "text"

	// FormatPretty is the colorized charmbracelet/log handler used for
	// interactive terminals.
	FormatPretty Format = "pretty"

	// FormatJSON is slog's JSON handler, one object per line.
	FormatJSON Format = "json"
)

// ParseFormat maps a user supplied name onto a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatPretty, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown log format %q (want text, pretty or json)", s)
	}
}

// Option configures a logger created with New.
type Option func(*config)

// WithFormat picks the output handler. Defaults to FormatText.
func WithFormat(f Format) Option {
	return func(c *config) {
		c.format = f
	}
}

// WithLevel sets the minimum level that is written.
func WithLevel(l slog.Level) Option {
	return func(c *config) {
		c.level = l
	}
}

// WithDebug lowers the level to Debug when debug is set.
func WithDebug(debug bool) Option {
	return func(c *config) {
		if debug {
			c.level = slog.LevelDebug
		}
	}
}

// WithWriter overrides the output writer. Defaults to os.Stdout.
func WithWriter(w io.Writer) Option {
	return func(c *config) {
		if w != nil {
			c.writer = w
		}
	}
}

// WithSource includes source file:line in log output.
func WithSource(source bool) Option {
	return func(c *config) {
		c.source = source
	}
}
