// Package logger is the leveled printf-style logging used across termkit.
//
// Output goes through the standard log package, so a live dashboard can
// divert it to a file while it owns the terminal.
package logger

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
)

// Logger is what components log through.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// Level orders log messages by severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{"debug", "info", "warn", "error"}

func (l Level) String() string {
	if l < LevelDebug || l > LevelError {
		return fmt.Sprintf("level(%d)", int(l))
	}
	return levelNames[l]
}

// ParseLevel reads a level name such as "warn". Case is ignored.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	for i, name := range levelNames {
		if name == s {
			return Level(i), nil
		}
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

const (
	// DebugEnvVar turns on debug output and, for live dashboards, the
	// debug log file.
	DebugEnvVar = "TERMKIT_DEBUG"
	// LevelEnvVar sets the minimum level when DebugEnvVar is unset.
	LevelEnvVar = "TERMKIT_LOG_LEVEL"
)

// EnvLevel is debug when DebugEnvVar is set, else the level named by
// LevelEnvVar, else info.
func EnvLevel() Level {
	if os.Getenv(DebugEnvVar) != "" {
		return LevelDebug
	}
	if v := os.Getenv(LevelEnvVar); v != "" {
		if lvl, err := ParseLevel(v); err == nil {
			return lvl
		}
	}
	return LevelInfo
}

// DebugEnabled reports whether debug messages are being written.
func DebugEnabled() bool {
	return EnvLevel() == LevelDebug
}

// stdLogger writes messages at or above its level, warnings and errors
// tagged with the level name.
type stdLogger struct {
	prefix string
	level  func() Level
	out    *log.Logger
}

// NewEnvLogger returns a logger on the standard log output whose level
// follows the environment at each call. prefix is usually the component,
// e.g. "[sys]".
func NewEnvLogger(prefix string) Logger {
	return &stdLogger{prefix: prefix, level: EnvLevel}
}

// New returns a logger writing to out at a fixed minimum level.
func New(out *log.Logger, prefix string, min Level) Logger {
	return &stdLogger{prefix: prefix, level: func() Level { return min }, out: out}
}

func (l *stdLogger) logf(lvl Level, format string, args []interface{}) {
	if lvl < l.level() {
		return
	}
	var b strings.Builder
	if l.prefix != "" {
		b.WriteString(l.prefix)
		b.WriteByte(' ')
	}
	if lvl >= LevelWarn {
		b.WriteString(strings.ToUpper(lvl.String()))
		b.WriteString(": ")
	}
	fmt.Fprintf(&b, format, args...)

	if l.out != nil {
		l.out.Print(b.String())
		return
	}
	log.Print(b.String())
}

func (l *stdLogger) Debug(format string, args ...interface{}) { l.logf(LevelDebug, format, args) }
func (l *stdLogger) Info(format string, args ...interface{})  { l.logf(LevelInfo, format, args) }
func (l *stdLogger) Warn(format string, args ...interface{})  { l.logf(LevelWarn, format, args) }
func (l *stdLogger) Error(format string, args ...interface{}) { l.logf(LevelError, format, args) }

type noopLogger struct{}

// Noop discards everything.
func Noop() Logger {
	return noopLogger{}
}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}

// Entry is one message kept by a BufferLogger.
type Entry struct {
	Level   Level
	Message string
}

// BufferLogger keeps messages in memory for tests. It may be written from
// another goroutine while a test reads it.
type BufferLogger struct {
	mu      sync.Mutex
	entries []Entry
}

// NewBufferLogger returns an empty BufferLogger.
func NewBufferLogger() *BufferLogger {
	return &BufferLogger{}
}

func (l *BufferLogger) add(lvl Level, format string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, Entry{Level: lvl, Message: fmt.Sprintf(format, args...)})
}

func (l *BufferLogger) Debug(format string, args ...interface{}) { l.add(LevelDebug, format, args) }
func (l *BufferLogger) Info(format string, args ...interface{})  { l.add(LevelInfo, format, args) }
func (l *BufferLogger) Warn(format string, args ...interface{})  { l.add(LevelWarn, format, args) }
func (l *BufferLogger) Error(format string, args ...interface{}) { l.add(LevelError, format, args) }

// Entries returns a copy of the messages logged so far.
func (l *BufferLogger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.entries...)
}

// Contains reports whether a message at the named level contains substr.
func (l *BufferLogger) Contains(level, substr string) bool {
	want, err := ParseLevel(level)
	if err != nil {
		return false
	}
	for _, e := range l.Entries() {
		if e.Level == want && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

var (
	defaultMu     sync.RWMutex
	defaultLogger = NewEnvLogger("")
)

// Default returns the process-wide logger.
func Default() Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetDefault replaces the process-wide logger and returns the previous one.
func SetDefault(l Logger) Logger {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	prev := defaultLogger
	defaultLogger = l
	return prev
}
