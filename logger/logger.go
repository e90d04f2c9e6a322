// Copyright (C) 2025 Mono Technologies Inc.
//
// This program is free software; you can redistribute it and/or
// modify it under the terms of the GNU General Public License
// as published by the Free Software Foundation; version 2.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.

// Package logger provides structured logging for adsbfeed.
package logger

import (
	"fmt"
	"os"
	"sync"
)

// Logger is the interface for structured logging
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger // Create child logger with preset fields
}

// Field represents a structured log field
type Field struct {
	Key   string
	Value interface{}
}

// F is shorthand for building a Field
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Backend is the interface for log output backends
type Backend interface {
	Write(entry *Entry) error
	Close() error
}

// Config holds logger configuration
type Config struct {
	Level     string   // debug, info, warn, error
	Format    string   // text, json
	Outputs   []string // console, file, journald
	FilePath  string   // Path to log file
	Component string   // Default component name
}

// LogLevel represents the severity level of a log message
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel converts a string to a LogLevel
func ParseLevel(level string) LogLevel {
	switch level {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// String returns the string representation of a LogLevel
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// standardLogger fans entries out to its backends and the emitter
type standardLogger struct {
	emitter   *Emitter
	fields    map[string]interface{}
	component string
	backends  []Backend
	level     LogLevel
	mu        sync.RWMutex
}

// New creates a new logger with the given configuration and backends
func New(config Config, backends []Backend, emitter *Emitter) Logger {
	return &standardLogger{
		level:     ParseLevel(config.Level),
		backends:  backends,
		emitter:   emitter,
		component: config.Component,
		fields:    make(map[string]interface{}),
	}
}

// NewNop returns a logger that drops everything
func NewNop() Logger {
	return &standardLogger{level: LevelError + 1, fields: make(map[string]interface{})}
}

func (l *standardLogger) Debug(msg string, fields ...Field) { l.log(LevelDebug, msg, fields...) }
func (l *standardLogger) Info(msg string, fields ...Field)  { l.log(LevelInfo, msg, fields...) }
func (l *standardLogger) Warn(msg string, fields ...Field)  { l.log(LevelWarn, msg, fields...) }
func (l *standardLogger) Error(msg string, fields ...Field) { l.log(LevelError, msg, fields...) }

// With creates a child logger with preset fields.
// A "component" field replaces the component name instead of becoming a field.
func (l *standardLogger) With(fields ...Field) Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()

	child := &standardLogger{
		level:     l.level,
		backends:  l.backends,
		emitter:   l.emitter,
		component: l.component,
		fields:    make(map[string]interface{}, len(l.fields)+len(fields)),
	}
	for k, v := range l.fields {
		child.fields[k] = v
	}

	for _, f := range fields {
		if f.Key == "component" {
			if s, ok := f.Value.(string); ok {
				child.component = s
				continue
			}
		}
		child.fields[f.Key] = f.Value
	}

	return child
}

func (l *standardLogger) log(level LogLevel, msg string, fields ...Field) {
	if level < l.level {
		return
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for _, f := range fields {
		merged[f.Key] = f.Value
	}

	entry := NewEntry(level.String(), l.component, msg, merged)

	for _, backend := range l.backends {
		if err := backend.Write(entry); err != nil {
			fmt.Fprintf(os.Stderr, "Logger backend error: %v\n", err)
		}
	}

	if l.emitter != nil {
		l.emitter.Emit(entry)
	}
}

// Setup builds the backends named in config.Outputs. Backends that cannot be
// opened are skipped with a note on stderr; console is used when none remain.
func Setup(config Config, emitter *Emitter) (Logger, func()) {
	var backends []Backend
	for _, output := range config.Outputs {
		switch output {
		case "console":
			backends = append(backends, NewConsoleBackend(os.Stderr, config.Format))
		case "file":
			b, err := NewFileBackend(config.FilePath, config.Format)
			if err != nil {
				fmt.Fprintf(os.Stderr, "[WARN] file logging disabled: %v\n", err)
				continue
			}
			backends = append(backends, b)
		case "journald":
			b, err := NewJournaldBackend(config.Format)
			if err != nil {
				fmt.Fprintf(os.Stderr, "[WARN] journald logging disabled: %v\n", err)
				continue
			}
			backends = append(backends, b)
		default:
			fmt.Fprintf(os.Stderr, "[WARN] unknown log output %q\n", output)
		}
	}

	if len(backends) == 0 {
		backends = append(backends, NewConsoleBackend(os.Stderr, config.Format))
	}

	closeAll := func() {
		for _, b := range backends {
			_ = b.Close()
		}
	}
	return New(config, backends, emitter), closeAll
}
