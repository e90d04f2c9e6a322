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

package validation

import (
	"errors"
	"fmt"
)

// KeyErrors groups validation failures by settings key.
// Keys are reported in the order their first failure was recorded.
type KeyErrors struct {
	byKey map[string][]error
	keys  []string
}

// NewKeyErrors returns an empty set.
func NewKeyErrors() *KeyErrors {
	return &KeyErrors{byKey: make(map[string][]error)}
}

// Add records err against key. A nil err is ignored.
func (ke *KeyErrors) Add(key string, err error) {
	if err == nil {
		return
	}
	if _, ok := ke.byKey[key]; !ok {
		ke.keys = append(ke.keys, key)
	}
	ke.byKey[key] = append(ke.byKey[key], err)
}

// AddMsg records err against key with msg between the key and the cause.
func (ke *KeyErrors) AddMsg(key string, err error, msg string) {
	if err == nil {
		return
	}
	ke.Add(key, fmt.Errorf("%s: %w", msg, err))
}

// Keys returns the keys with at least one failure.
func (ke *KeyErrors) Keys() []string {
	return append([]string(nil), ke.keys...)
}

// For returns the failures recorded for key.
func (ke *KeyErrors) For(key string) []error {
	return ke.byKey[key]
}

// Err joins every failure as "KEY: cause", or returns nil when there are none.
func (ke *KeyErrors) Err() error {
	var errs []error
	for _, key := range ke.keys {
		for _, err := range ke.byKey[key] {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}
