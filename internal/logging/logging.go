// Package logging provides structured logging for the downloader,
// following the same log/slog-based approach the pack uses (see
// media-proxy-go/pkg/logging) wrapped in a Fields-based convenience API:
// each call takes its attributes as a Fields map (logger.Debug(event,
// fields), logger.Error(err, event, fields)).
package logging

import (
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// titleCaser normalizes component tags for display (e.g. "space guard"
// becomes "Space Guard" in the debug sink), the same title-casing
// dependency the teacher's own Config uses for custom transforms.
var titleCaser = cases.Title(language.English)

// Fields is a set of structured attributes attached to a log record.
type Fields map[string]any

// Logger wraps slog.Logger and optionally duplicates records, as JSON, to a
// debug sink file when diagnostics are enabled.
type Logger struct {
	base      *slog.Logger
	debug     *slog.Logger
	debugFile *os.File
	component string
}

// New creates a Logger that writes to stdout, and — when enabled — also
// appends structured JSON records to debugPath.
func New(enabled bool, debugPath string) (*Logger, error) {
	base := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	l := &Logger{base: base}
	if !enabled {
		return l, nil
	}

	f, err := os.OpenFile(debugPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open debug sink: %w", err)
	}
	l.debugFile = f
	l.debug = slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return l, nil
}

// Close releases the debug sink file, if one was opened.
func (l *Logger) Close() error {
	if l.debugFile != nil {
		return l.debugFile.Close()
	}
	return nil
}

// WithComponent returns a logger tagged with a component name.
func (l *Logger) WithComponent(name string) *Logger {
	clone := *l
	clone.component = titleCaser.String(name)
	return &clone
}

func (l *Logger) attrs(fields Fields) []any {
	args := make([]any, 0, len(fields)*2+2)
	if l.component != "" {
		args = append(args, "component", l.component)
	}
	for k, v := range fields {
		args = append(args, k, v)
	}
	return args
}

// Debug records a diagnostic event. Only reaches the debug sink; stdout
// stays quiet at debug level to keep normal runs free of noise.
func (l *Logger) Debug(event string, fields Fields) {
	if l.debug == nil {
		return
	}
	l.debug.Debug(event, l.attrs(fields)...)
}

// Warn records a recoverable condition, visible on stdout and in the debug
// sink when enabled.
func (l *Logger) Warn(event string, fields Fields) {
	l.base.Warn(event, l.attrs(fields)...)
	if l.debug != nil {
		l.debug.Warn(event, l.attrs(fields)...)
	}
}

// Error records a terminal failure. err may be nil.
func (l *Logger) Error(err error, event string, fields Fields) {
	args := l.attrs(fields)
	if err != nil {
		args = append(args, "error", err.Error())
	}
	l.base.Error(event, args...)
	if l.debug != nil {
		l.debug.Error(event, args...)
	}
}
