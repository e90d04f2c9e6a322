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
	"sync"
)

// Subscriber receives every entry a logger writes
type Subscriber interface {
	OnLogEvent(entry *Entry)
}

// Emitter delivers log entries to subscribers synchronously, in subscription order
type Emitter struct {
	subscribers []Subscriber
	mu          sync.RWMutex
}

// NewEmitter creates a new log event emitter
func NewEmitter() *Emitter {
	return &Emitter{}
}

// Subscribe adds a subscriber to receive log events
func (e *Emitter) Subscribe(sub Subscriber) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subscribers = append(e.subscribers, sub)
}

// Unsubscribe removes a subscriber from receiving log events
func (e *Emitter) Unsubscribe(sub Subscriber) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, s := range e.subscribers {
		if s == sub {
			e.subscribers = append(e.subscribers[:i], e.subscribers[i+1:]...)
			return
		}
	}
}

// Emit sends a log entry to all subscribers
func (e *Emitter) Emit(entry *Entry) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, sub := range e.subscribers {
		sub.OnLogEvent(entry)
	}
}

// WarningCollector counts warnings and errors seen during a run
type WarningCollector struct {
	Messages []string
	mu       sync.Mutex
}

// OnLogEvent records warn and error entries
func (c *WarningCollector) OnLogEvent(entry *Entry) {
	if entry.Level != "warn" && entry.Level != "error" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Messages = append(c.Messages, entry.Message)
}

// Count returns the number of warnings recorded
func (c *WarningCollector) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Messages)
}
