// Package logger provides a small levelled, structured logger for the CLI and
// the analysis pipeline.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Level represents the logging level
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelSilent
)

// String returns the string representation of the level
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelSilent:
		return "SILENT"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name (case-insensitive) into a Level
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "silent", "off":
		return LevelSilent, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

var levelStyles = map[Level]lipgloss.Style{
	LevelDebug: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	LevelInfo:  lipgloss.NewStyle().Foreground(lipgloss.Color("cyan")),
	LevelWarn:  lipgloss.NewStyle().Foreground(lipgloss.Color("yellow")).Bold(true),
	LevelError: lipgloss.NewStyle().Foreground(lipgloss.Color("red")).Bold(true),
}

// Logger provides structured logging with configurable levels
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	WithFields(fields ...Field) Logger
	SetLevel(level Level)
}

// Field represents a structured log field
type Field struct {
	Key   string
	Value any
}

// F is a convenience function for creating fields
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

type standardLogger struct {
	mu     *sync.Mutex
	level  *Level
	out    io.Writer
	fields []Field
}

// New creates a logger writing entries at or above level to out
func New(level Level, out io.Writer) Logger {
	if out == nil {
		out = os.Stderr
	}
	return &standardLogger{
		mu:    &sync.Mutex{},
		level: &level,
		out:   out,
	}
}

// NewSilent creates a logger that outputs nothing
func NewSilent() Logger {
	return New(LevelSilent, io.Discard)
}

// SetLevel sets the minimum logging level. Loggers derived with WithFields
// share the level.
func (l *standardLogger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.level = level
}

// WithFields returns a logger that adds fields to every entry
func (l *standardLogger) WithFields(fields ...Field) Logger {
	merged := make([]Field, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)

	return &standardLogger{
		mu:     l.mu,
		level:  l.level,
		out:    l.out,
		fields: merged,
	}
}

func (l *standardLogger) Debug(msg string, fields ...Field) { l.log(LevelDebug, msg, fields) }
func (l *standardLogger) Info(msg string, fields ...Field)  { l.log(LevelInfo, msg, fields) }
func (l *standardLogger) Warn(msg string, fields ...Field)  { l.log(LevelWarn, msg, fields) }
func (l *standardLogger) Error(msg string, fields ...Field) { l.log(LevelError, msg, fields) }

func (l *standardLogger) log(level Level, msg string, fields []Field) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < *l.level {
		return
	}

	var sb strings.Builder
	sb.WriteString(time.Now().Format("2006-01-02 15:04:05"))
	sb.WriteString(" ")
	sb.WriteString(levelStyles[level].Render(fmt.Sprintf("%-5s", level)))
	sb.WriteString(" ")
	sb.WriteString(msg)

	if len(l.fields)+len(fields) > 0 {
		sb.WriteString(" |")
		for _, f := range l.fields {
			fmt.Fprintf(&sb, " %s=%v", f.Key, f.Value)
		}
		for _, f := range fields {
			fmt.Fprintf(&sb, " %s=%v", f.Key, f.Value)
		}
	}
	sb.WriteString("\n")

	_, _ = io.WriteString(l.out, sb.String())
}

var defaultLogger = New(LevelInfo, os.Stderr)

// SetDefault replaces the package-level logger
func SetDefault(l Logger) {
	defaultLogger = l
}

// Default returns the package-level logger
func Default() Logger {
	return defaultLogger
}
