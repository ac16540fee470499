package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// LogLevel represents different logging levels
type LogLevel int

const (
	// DEBUG level for detailed debugging information
	DEBUG LogLevel = iota
	// INFO level for general operational information
	INFO
	// WARN level for warning messages
	WARN
	// ERROR level for error messages
	ERROR
	// FATAL level for fatal errors that require immediate attention
	FATAL
)

var levelNames = map[LogLevel]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
	FATAL: "FATAL",
}

var zerologLevels = map[LogLevel]zerolog.Level{
	DEBUG: zerolog.DebugLevel,
	INFO:  zerolog.InfoLevel,
	WARN:  zerolog.WarnLevel,
	ERROR: zerolog.ErrorLevel,
	FATAL: zerolog.FatalLevel,
}

// Output formats accepted by Setup
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Options controls how the default logger writes
type Options struct {
	Level     LogLevel
	Format    string
	Output    io.Writer
	Component string
}

// Logger is a leveled, component-tagged logger backed by zerolog
type Logger struct {
	level     LogLevel
	zl        zerolog.Logger
	mu        sync.Mutex
	component string
}

var (
	defaultLogger *Logger
	defaultMu     sync.RWMutex
	once          sync.Once
	exit          = os.Exit
)

// InitLogger initializes the default logger
func InitLogger(level LogLevel, component string) {
	once.Do(func() {
		l := newLogger(Options{
			Level:     level,
			Format:    FormatConsole,
			Output:    os.Stdout,
			Component: component,
		})
		defaultMu.Lock()
		defaultLogger = l
		defaultMu.Unlock()
	})
}

// Setup replaces the default logger with one built from opts
func Setup(opts Options) *Logger {
	once.Do(func() {})
	l := newLogger(opts)

	defaultMu.Lock()
	defaultLogger = l
	defaultMu.Unlock()
	return l
}

func newLogger(opts Options) *Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.Format != FormatJSON {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return &Logger{
		level:     opts.Level,
		zl:        zerolog.New(out).With().Timestamp().Logger(),
		component: opts.Component,
	}
}

// GetLogger returns the default logger instance
func GetLogger() *Logger {
	defaultMu.RLock()
	l := defaultLogger
	defaultMu.RUnlock()
	if l != nil {
		return l
	}

	InitLogger(INFO, "default")
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// ParseLevel converts a level name such as "debug" or "WARN" into a LogLevel
func ParseLevel(name string) (LogLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG", "TRACE":
		return DEBUG, nil
	case "", "INFO":
		return INFO, nil
	case "WARN", "WARNING":
		return WARN, nil
	case "ERROR":
		return ERROR, nil
	case "FATAL":
		return FATAL, nil
	}
	return INFO, fmt.Errorf("unknown log level %q", name)
}

func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LogLevel(%d)", int(l))
}

func (l *Logger) derive(zl zerolog.Logger, component string) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	return &Logger{
		level:     l.level,
		zl:        zl,
		component: component,
	}
}

// WithComponent creates a new logger with the specified component name
func (l *Logger) WithComponent(component string) *Logger {
	return l.derive(l.zl, component)
}

// With creates a new logger that attaches key=value to every entry
func (l *Logger) With(key string, value interface{}) *Logger {
	return l.derive(l.zl.With().Interface(key, value).Logger(), l.component)
}

// WithError creates a new logger that attaches err to every entry
func (l *Logger) WithError(err error) *Logger {
	return l.derive(l.zl.With().Err(err).Logger(), l.component)
}

// SetLevel sets the logging level
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// Enabled reports whether entries at level would be written
func (l *Logger) Enabled(level LogLevel) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return level >= l.level
}

// log performs the actual logging
func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	if !l.Enabled(level) {
		return
	}

	l.zl.WithLevel(zerologLevels[level]).
		Str("component", l.component).
		Msgf(format, args...)

	if level == FATAL {
		exit(1)
	}
}

// Debug logs debug level messages
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(DEBUG, format, args...)
}

// Info logs info level messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(INFO, format, args...)
}

// Warn logs warning level messages
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(WARN, format, args...)
}

// Error logs error level messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(ERROR, format, args...)
}

// Fatal logs fatal level messages and exits
func (l *Logger) Fatal(format string, args ...interface{}) {
	l.log(FATAL, format, args...)
}

type ctxKey struct{}

// IntoContext returns a copy of ctx carrying l
func IntoContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger stored by IntoContext, or the default logger
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok && l != nil {
		return l
	}
	return GetLogger()
}
