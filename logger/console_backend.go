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

package logger

import (
	"io"
	"sync"

	"github.com/hashicorp/go-hclog"
)

// ConsoleBackend renders entries through hclog for interactive use
type ConsoleBackend struct {
	base hclog.Logger
	mu   sync.Mutex
}

// NewConsoleBackend creates a console backend writing to w
func NewConsoleBackend(w io.Writer, format string) *ConsoleBackend {
	return &ConsoleBackend{
		base: hclog.New(&hclog.LoggerOptions{
			Name:       "adsbfeed",
			Output:     w,
			Level:      hclog.Trace, // filtering happens in standardLogger
			JSONFormat: format == "json",
			Color:      hclog.AutoColor,
		}),
	}
}

// Write writes a log entry through hclog
func (b *ConsoleBackend) Write(entry *Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	l := b.base
	if entry.Component != "" {
		l = l.Named(entry.Component)
	}

	args := make([]interface{}, 0, len(entry.Fields)*2)
	for _, k := range entry.FieldKeys() {
		args = append(args, k, entry.Fields[k])
	}

	l.Log(hclogLevel(entry.Level), entry.Message, args...)
	return nil
}

// Close is a no-op for the console backend
func (b *ConsoleBackend) Close() error {
	return nil
}

func hclogLevel(level string) hclog.Level {
	switch level {
	case "debug":
		return hclog.Debug
	case "warn":
		return hclog.Warn
	case "error":
		return hclog.Error
	default:
		return hclog.Info
	}
}
