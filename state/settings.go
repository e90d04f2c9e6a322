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

package state

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/joho/godotenv"
)

// ErrSettingsNotFound is returned when the settings document does not exist.
// It is the only condition that aborts a build run.
var ErrSettingsNotFound = errors.New("settings file not found")

// settingsLine is one physical line of the settings document.
// key is empty for comments, blank lines and anything that is not KEY=value.
type settingsLine struct {
	raw string
	key string
}

// Settings is the flat KEY=value settings document.
// Lines that are not managed keys pass through unchanged on Save; managed keys
// are normalized to KEY=value and keys added in memory are appended at the end.
type Settings struct {
	values  map[string]string
	deleted map[string]bool
	path    string
	lines   []settingsLine
	order   []string
	changed bool
}

// LoadSettings reads the settings document at path.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSettingsNotFound, path)
		}
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	return ParseSettings(path, data), nil
}

// ParseSettings builds a Settings document from raw file content.
// path is only used by Save.
func ParseSettings(path string, data []byte) *Settings {
	s := &Settings{path: path}
	s.parse(data)
	return s
}

func (s *Settings) parse(data []byte) {
	s.values = make(map[string]string)
	s.deleted = make(map[string]bool)
	s.lines = nil
	s.order = nil
	s.changed = false

	text := string(data)
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return
	}

	for _, raw := range strings.Split(text, "\n") {
		key, value, ok := parseSettingsLine(strings.TrimRight(raw, "\r"))
		if !ok {
			s.lines = append(s.lines, settingsLine{raw: raw})
			continue
		}

		if _, seen := s.values[key]; !seen {
			s.order = append(s.order, key)
		}
		s.values[key] = value
		s.lines = append(s.lines, settingsLine{raw: raw, key: key})
	}
}

// parseSettingsLine extracts KEY and value from a single line.
// godotenv handles single quotes, export prefixes and inline comments. Double-quoted
// and unquoted values containing '$' bypass it so no variable expansion happens.
func parseSettingsLine(line string) (string, string, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") || !strings.Contains(trimmed, "=") {
		return "", "", false
	}

	rawKey, rawValue, _ := strings.Cut(trimmed, "=")
	key := strings.TrimSpace(strings.TrimPrefix(rawKey, "export "))
	if key == "" {
		return "", "", false
	}

	rawValue = strings.TrimSpace(rawValue)
	if strings.HasPrefix(rawValue, `"`) {
		if v, ok := decodeDoubleQuoted(rawValue); ok {
			return key, v, true
		}
	}
	if !(strings.Contains(rawValue, "$") && !strings.HasPrefix(rawValue, "'")) {
		if parsed, err := godotenv.Unmarshal(trimmed); err == nil {
			if v, ok := parsed[key]; ok && len(parsed) == 1 {
				return key, v, true
			}
		}
	}

	return key, unquoteValue(rawValue), true
}

func unquoteValue(v string) string {
	if len(v) >= 2 {
		switch {
		case v[0] == '\'' && v[len(v)-1] == '\'':
			return v[1 : len(v)-1]
		case v[0] == '"' && v[len(v)-1] == '"':
			if u, err := strconv.Unquote(v); err == nil {
				return u
			}
			return v[1 : len(v)-1]
		}
	}
	return v
}

// decodeDoubleQuoted reads a double-quoted value up to its closing quote.
// \n and \r are line breaks; any other escaped character stands for itself.
func decodeDoubleQuoted(raw string) (string, bool) {
	var b strings.Builder
	for i := 1; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c == '\\' && i+1 < len(raw):
			i++
			switch raw[i] {
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			default:
				b.WriteByte(raw[i])
			}
		case c == '"':
			return b.String(), true
		default:
			b.WriteByte(c)
		}
	}
	return "", false
}

// formatValue quotes a value only when a bare value would not read back identically.
func formatValue(v string) string {
	if v == "" {
		return ""
	}

	needsQuote := strings.TrimSpace(v) != v ||
		strings.ContainsAny(v, "#\"'`$\\") ||
		strings.IndexFunc(v, unicode.IsControl) >= 0 ||
		strings.HasPrefix(v, "=")
	if !needsQuote {
		return v
	}

	// A trailing backslash would escape the closing single quote.
	if !strings.ContainsAny(v, "'\n\r") && !strings.HasSuffix(v, `\`) {
		return "'" + v + "'"
	}
	return `"` + doubleQuoteEscaper.Replace(v) + `"`
}

var doubleQuoteEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	`$`, `\$`,
	"\n", `\n`,
	"\r", `\r`,
)

// Path returns the file path the document was loaded from.
func (s *Settings) Path() string {
	return s.path
}

// Lookup returns the value for key and whether it is present.
func (s *Settings) Lookup(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Get returns the value for key, or "" when absent.
func (s *Settings) Get(key string) string {
	return s.values[key]
}

// GetDefault returns the value for key, or def when the key is absent.
// A present but empty key returns "".
func (s *Settings) GetDefault(key, def string) string {
	if v, ok := s.values[key]; ok {
		return v
	}
	return def
}

// GetNonEmpty returns the trimmed value for key, or def when absent or blank.
func (s *Settings) GetNonEmpty(key, def string) string {
	if v := strings.TrimSpace(s.values[key]); v != "" {
		return v
	}
	return def
}

// Bool reports whether key is "true" (case-insensitive). def applies only when absent.
func (s *Settings) Bool(key string, def bool) bool {
	v, ok := s.values[key]
	if !ok {
		return def
	}
	return strings.EqualFold(strings.TrimSpace(v), "true")
}

// Int parses key as a decimal integer, returning def when absent or malformed.
func (s *Settings) Int(key string, def int) int {
	v := strings.TrimSpace(s.values[key])
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// Set stores value for key. Setting the current value is not a change.
func (s *Settings) Set(key, value string) {
	if current, ok := s.values[key]; ok && current == value {
		return
	}

	if _, ok := s.values[key]; !ok && !s.hasOrder(key) {
		s.order = append(s.order, key)
	}
	s.values[key] = value
	delete(s.deleted, key)
	s.changed = true
}

// Delete removes key. Its lines are dropped on Save.
func (s *Settings) Delete(key string) {
	if _, ok := s.values[key]; !ok {
		return
	}
	delete(s.values, key)
	s.deleted[key] = true
	s.changed = true
}

func (s *Settings) hasOrder(key string) bool {
	for _, k := range s.order {
		if k == key {
			return true
		}
	}
	return false
}

// Keys returns the present keys in document order, appended keys last.
func (s *Settings) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for _, k := range s.order {
		if _, ok := s.values[k]; ok {
			keys = append(keys, k)
		}
	}
	return keys
}

// Changed reports whether the document was mutated since it was loaded or saved.
func (s *Settings) Changed() bool {
	return s.changed
}

// Render returns the document as it would be written by Save.
func (s *Settings) Render() []byte {
	var buf bytes.Buffer
	written := make(map[string]bool)

	for _, line := range s.lines {
		if line.key == "" {
			buf.WriteString(line.raw)
			buf.WriteByte('\n')
			continue
		}

		value, ok := s.values[line.key]
		if !ok {
			continue
		}
		buf.WriteString(line.key + "=" + formatValue(value))
		buf.WriteByte('\n')
		written[line.key] = true
	}

	for _, key := range s.order {
		value, ok := s.values[key]
		if !ok || written[key] {
			continue
		}
		buf.WriteString(key + "=" + formatValue(value))
		buf.WriteByte('\n')
	}

	return buf.Bytes()
}

// Save writes the document atomically, keeping the previous file as <path>.bak.
func (s *Settings) Save() error {
	if s.path == "" {
		return fmt.Errorf("settings document has no path")
	}

	if _, err := os.Stat(s.path); err == nil {
		if err := copyFile(s.path, s.path+".bak"); err != nil {
			return fmt.Errorf("failed to create backup: %w", err)
		}
	}

	data := s.Render()
	if err := WriteFileAtomic(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	s.parse(data)
	return nil
}

// SaveIfChanged writes the document only when it was mutated.
func (s *Settings) SaveIfChanged() (bool, error) {
	if !s.changed {
		return false, nil
	}
	if err := s.Save(); err != nil {
		return false, err
	}
	return true, nil
}
