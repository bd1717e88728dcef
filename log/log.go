package log

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
)

// Level is a logging severity. It is a plain alias of [slog.Level] so log
// handlers built by this package compose directly with [log/slog].
type Level = slog.Level

// Handler is a plain alias of [slog.Handler], the type every constructor
// in this package returns.
type Handler = slog.Handler

// The logging levels this package accepts from flags or config files.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Format represents the log output format.
type Format string

const (
	// FormatJSON outputs logs as JSON objects, one per line.
	FormatJSON Format = "json"
	// FormatLogfmt outputs logs in logfmt key=value form.
	FormatLogfmt Format = "logfmt"
	// FormatText outputs logs in slog's human-readable text form.
	FormatText Format = "text"
)

var (
	// ErrInvalidArgument indicates an invalid argument was provided.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnknownLogLevel indicates an unrecognized log level string.
	ErrUnknownLogLevel = errors.New("unknown log level")
	// ErrUnknownLogFormat indicates an unrecognized log format string.
	ErrUnknownLogFormat = errors.New("unknown log format")
)

// NewHandlerFromStrings parses logLevel and logFormat and builds a
// [slog.Handler] writing to w.
func NewHandlerFromStrings(w io.Writer, logLevel, logFormat string) (Handler, error) {
	lvl, err := ParseLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	format, err := ParseFormat(logFormat)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	return NewHandler(w, lvl, format), nil
}

// NewHandler creates a [slog.Handler] writing to w at the given level and
// format.
func NewHandler(w io.Writer, lvl Level, format Format) Handler {
	opts := &slog.HandlerOptions{AddSource: true, Level: lvl}

	switch format {
	case FormatJSON:
		return slog.NewJSONHandler(w, opts)
	case FormatLogfmt, FormatText:
		return slog.NewTextHandler(w, opts)
	default:
		return slog.NewTextHandler(w, opts)
	}
}

// ParseLevel parses a log level string.
func ParseLevel(level string) (Level, error) {
	switch strings.ToLower(level) {
	case "error":
		return LevelError, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "info":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	}

	return 0, ErrUnknownLogLevel
}

// ParseFormat parses a log format string.
func ParseFormat(format string) (Format, error) {
	f := Format(strings.ToLower(format))
	if slices.Contains([]Format{FormatJSON, FormatLogfmt, FormatText}, f) {
		return f, nil
	}

	return "", ErrUnknownLogFormat
}

// GetAllLevelStrings returns the accepted level strings, for flag help text
// and shell completion.
func GetAllLevelStrings() []string {
	return []string{"debug", "info", "warn", "error"}
}

// GetAllFormatStrings returns the accepted format strings, for flag help
// text and shell completion.
func GetAllFormatStrings() []string {
	return []string{string(FormatJSON), string(FormatLogfmt), string(FormatText)}
}
