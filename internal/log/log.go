// Package log provides the small leveled-logger interface the rest of
// this module depends on, instead of a direct dependency on any one
// third-party logging library.
package log

import (
	"fmt"
	"io"
	"log"
)

// Level is a logging severity.
type Level int

// Severity levels, lowest to highest.
const (
	LevelDebug Level = iota
	LevelWarn
	LevelError
)

// Logger is the minimal interface a logging backend must satisfy.
type Logger interface {
	Log(level Level, msg string)
}

// stdLogger writes to an *log.Logger, one line per entry.
type stdLogger struct {
	l *log.Logger
}

// NewStdLogger builds a Logger that writes to w via the standard
// library's log package.
func NewStdLogger(w io.Writer) Logger {
	return &stdLogger{l: log.New(w, "", log.LstdFlags)}
}

func (s *stdLogger) Log(level Level, msg string) {
	s.l.Print(prefix(level) + msg)
}

func prefix(level Level) string {
	switch level {
	case LevelDebug:
		return "DEBUG: "
	case LevelWarn:
		return "WARN: "
	case LevelError:
		return "ERROR: "
	default:
		return ""
	}
}

// filter wraps a Logger and drops entries below a minimum level.
type filter struct {
	next Logger
	min  Level
}

// FilterOption configures a Filter.
type FilterOption func(*filter)

// FilterLevel sets the minimum level that passes through the filter.
func FilterLevel(min Level) FilterOption {
	return func(f *filter) { f.min = min }
}

// NewFilter wraps next with level filtering.
func NewFilter(next Logger, opts ...FilterOption) Logger {
	f := &filter{next: next, min: LevelWarn}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *filter) Log(level Level, msg string) {
	if level < f.min {
		return
	}
	f.next.Log(level, msg)
}

// Helper adds printf-style convenience methods on top of a Logger.
type Helper struct {
	logger Logger
}

// NewHelper wraps logger in a Helper.
func NewHelper(logger Logger) *Helper {
	return &Helper{logger: logger}
}

// Debugf logs at debug level.
func (h *Helper) Debugf(format string, args ...interface{}) {
	h.logger.Log(LevelDebug, fmt.Sprintf(format, args...))
}

// Warn logs a plain message at warn level.
func (h *Helper) Warn(msg string) {
	h.logger.Log(LevelWarn, msg)
}

// Warnf logs at warn level.
func (h *Helper) Warnf(format string, args ...interface{}) {
	h.logger.Log(LevelWarn, fmt.Sprintf(format, args...))
}

// Errorf logs at error level.
func (h *Helper) Errorf(format string, args ...interface{}) {
	h.logger.Log(LevelError, fmt.Sprintf(format, args...))
}
