// Package mblog provides the structured logging surface used throughout
// mbslave's ambient stack (transport, config, the cmd/ demos), backed by
// logrus the way simonvetter-modbus's own logger wraps a leveled backend.
package mblog

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Level names the supported log levels, mirrored from logrus's own levels
// so callers never need to import logrus directly.
type Level uint32

const (
	ErrorLevel Level = iota
	WarnLevel
	InfoLevel
	DebugLevel
)

func (l Level) toLogrus() logrus.Level {
	switch l {
	case ErrorLevel:
		return logrus.ErrorLevel
	case WarnLevel:
		return logrus.WarnLevel
	case DebugLevel:
		return logrus.DebugLevel
	default:
		return logrus.InfoLevel
	}
}

// Logger is the leveled logging interface every package in this module
// accepts instead of taking a concrete logrus dependency.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	WithField(key string, value interface{}) Logger
}

type logrusLogger struct {
	entry *logrus.Entry
}

// Option configures a Logger built by New.
type Option func(*logrus.Logger)

// WithLevel sets the minimum level that will be emitted.
func WithLevel(l Level) Option {
	return func(lg *logrus.Logger) { lg.SetLevel(l.toLogrus()) }
}

// WithOutput redirects log output away from the default of stderr.
func WithOutput(w io.Writer) Option {
	return func(lg *logrus.Logger) { lg.SetOutput(w) }
}

// WithJSON switches the formatter from logrus's default text formatter to
// structured JSON, useful when a transport's output is consumed by a log
// aggregator rather than a terminal.
func WithJSON() Option {
	return func(lg *logrus.Logger) { lg.SetFormatter(&logrus.JSONFormatter{}) }
}

// New builds a Logger with the given component name attached as a field,
// applying opts in order. The default level is Info, output is stderr.
func New(component string, opts ...Option) Logger {
	lg := logrus.New()
	lg.SetOutput(os.Stderr)
	lg.SetLevel(logrus.InfoLevel)
	for _, opt := range opts {
		opt(lg)
	}
	return &logrusLogger{entry: lg.WithField("component", component)}
}

func (l *logrusLogger) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l *logrusLogger) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *logrusLogger) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *logrusLogger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }

func (l *logrusLogger) WithField(key string, value interface{}) Logger {
	return &logrusLogger{entry: l.entry.WithField(key, value)}
}
