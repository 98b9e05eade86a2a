package driver

import (
	"fmt"
	"log"
	"strings"
)

// Logger is the interface for structured logging.
type Logger interface {
	Info(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Debug(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
}

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value any
}

// F creates a new Field with the given key and value.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// NopLogger is a logger that discards all log entries.
type NopLogger struct{}

func (NopLogger) Info(msg string, fields ...Field)  {}
func (NopLogger) Error(msg string, fields ...Field) {}
func (NopLogger) Debug(msg string, fields ...Field) {}
func (NopLogger) Warn(msg string, fields ...Field)  {}

// StdLogger writes "level: msg key=value ..." lines through a standard
// library logger. Debug lines are dropped unless Verbose is set.
type StdLogger struct {
	L       *log.Logger
	Verbose bool
}

func (s StdLogger) Info(msg string, fields ...Field)  { s.write("info", msg, fields) }
func (s StdLogger) Error(msg string, fields ...Field) { s.write("error", msg, fields) }
func (s StdLogger) Warn(msg string, fields ...Field)  { s.write("warn", msg, fields) }

func (s StdLogger) Debug(msg string, fields ...Field) {
	if s.Verbose {
		s.write("debug", msg, fields)
	}
}

func (s StdLogger) write(level, msg string, fields []Field) {
	l := s.L
	if l == nil {
		l = log.Default()
	}
	var sb strings.Builder
	sb.WriteString(level)
	sb.WriteString(": ")
	sb.WriteString(msg)
	for _, f := range fields {
		fmt.Fprintf(&sb, " %s=%v", f.Key, f.Value)
	}
	l.Print(sb.String())
}
