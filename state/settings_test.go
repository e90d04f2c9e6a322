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
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSettings = `# TAKNET-PS feeder settings
FEEDER_LAT=33.1
FEEDER_LONG=-117.2

# Aggregators
ADSBFI_ENABLED=true
export FR24_KEY="abc123"
CUSTOM_THING=keep me
`

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

// TestLoadSettingsMissing tests the fatal missing-file condition
func TestLoadSettingsMissing(t *testing.T) {
	_, err := LoadSettings(filepath.Join(t.TempDir(), ".env"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSettingsNotFound)
}

// TestLoadSettingsValues tests parsing of plain, quoted and exported values
func TestLoadSettingsValues(t *testing.T) {
	s, err := LoadSettings(writeSettings(t, sampleSettings))
	require.NoError(t, err)

	assert.Equal(t, "33.1", s.Get("FEEDER_LAT"))
	assert.Equal(t, "abc123", s.Get("FR24_KEY"))
	assert.Equal(t, "keep me", s.Get("CUSTOM_THING"))
	assert.Equal(t, []string{"FEEDER_LAT", "FEEDER_LONG", "ADSBFI_ENABLED", "FR24_KEY", "CUSTOM_THING"}, s.Keys())
	assert.False(t, s.Changed())
}

// TestSettingsAccessors tests default handling semantics
func TestSettingsAccessors(t *testing.T) {
	s := ParseSettings("", []byte("EMPTY=\nFLAG=TRUE\nOFF=no\nPORT=30004\nBAD_PORT=x\n"))

	assert.Equal(t, "", s.GetDefault("EMPTY", "def"))
	assert.Equal(t, "def", s.GetDefault("MISSING", "def"))
	assert.Equal(t, "def", s.GetNonEmpty("EMPTY", "def"))

	assert.True(t, s.Bool("FLAG", false))
	assert.False(t, s.Bool("OFF", true))
	assert.False(t, s.Bool("EMPTY", true))
	assert.True(t, s.Bool("MISSING", true))

	assert.Equal(t, 30004, s.Int("PORT", 1))
	assert.Equal(t, 1, s.Int("BAD_PORT", 1))
	assert.Equal(t, 1, s.Int("MISSING", 1))
}

// TestSettingsRenderPassthrough tests that comments and unknown keys survive a rewrite
func TestSettingsRenderPassthrough(t *testing.T) {
	s := ParseSettings("", []byte(sampleSettings))
	s.Set("FEEDER_LAT", "34.0")
	s.Set("NEW_KEY", "added")

	expected := `# TAKNET-PS feeder settings
FEEDER_LAT=34.0
FEEDER_LONG=-117.2

# Aggregators
ADSBFI_ENABLED=true
FR24_KEY=abc123
CUSTOM_THING=keep me
NEW_KEY=added
`
	assert.Equal(t, expected, string(s.Render()))
}

// TestSettingsDelete tests that deleted keys lose their line
func TestSettingsDelete(t *testing.T) {
	s := ParseSettings("", []byte("A=1\nB=2\n# note\n"))
	s.Delete("A")
	s.Delete("MISSING")

	assert.True(t, s.Changed())
	_, ok := s.Lookup("A")
	assert.False(t, ok)
	assert.Equal(t, "B=2\n# note\n", string(s.Render()))
}

// TestSettingsSetSameValueIsNoChange tests change tracking
func TestSettingsSetSameValueIsNoChange(t *testing.T) {
	s := ParseSettings("", []byte("A=1\n"))
	s.Set("A", "1")
	assert.False(t, s.Changed())

	s.Set("A", "2")
	assert.True(t, s.Changed())
}

// TestSettingsQuotingRoundTrip tests that awkward values read back identically
func TestSettingsQuotingRoundTrip(t *testing.T) {
	values := map[string]string{
		"HASH":           "pass # word",
		"DOLLAR":         "pa$$word",
		"SPACES":         "  padded  ",
		"QUOTE":          `it's "quoted"`,
		"FEEDLIST":       "adsb,feed1.adsbexchange.com,30004,beast_reduce_plus_out,uuid=abc;mlat,in.adsb.lol,31090,39001",
		"TAB_APOSTROPHE": "it's\ttab",
		"TAB":            "col1\tcol2",
		"BELL":           "bell\x07's",
		"NEWLINE":        "line1\nline2",
		"CARRIAGE":       "a\rb",
		"TRAILING_SLASH": `C:\data\`,
		"TRAILING_QUOTE": `say "hi"`,
		"SLASH_QUOTE":    `a\"b'`,
		"APOS_DOLLAR":    "it's $HOME",
		"ESCAPED_N":      `it's \n literal`,
		"LEADING_EQUALS": "=x",
	}

	s := ParseSettings("", nil)
	for k, v := range values {
		s.Set(k, v)
	}

	reloaded := ParseSettings("", s.Render())
	for k, v := range values {
		assert.Equal(t, v, reloaded.Get(k), "value for %s", k)
	}
}

// TestSettingsRenderQuoting tests the quoting style chosen for each kind of value
func TestSettingsRenderQuoting(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"bare", "33.1", "K=33.1\n"},
		{"empty", "", "K=\n"},
		{"hash single quoted", "a # b", "K='a # b'\n"},
		{"tab single quoted", "a\tb", "K='a\tb'\n"},
		{"trailing backslash double quoted", `dir\`, `K="dir\\"` + "\n"},
		{"apostrophe double quoted", "it's $HOME", `K="it's \$HOME"` + "\n"},
		{"newline escaped", "it's\nnext", `K="it's\nnext"` + "\n"},
		{"quote escaped", `it's "x"`, `K="it's \"x\""` + "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ParseSettings("", nil)
			s.Set("K", tt.value)
			assert.Equal(t, tt.want, string(s.Render()))
			assert.Equal(t, tt.value, ParseSettings("", s.Render()).Get("K"))
		})
	}
}

// TestSettingsRenderReadableByGodotenv tests that rendered values keep their meaning for other dotenv readers
func TestSettingsRenderReadableByGodotenv(t *testing.T) {
	values := []string{
		"pass # word",
		"it's \"quoted\" here",
		"it's $HOME",
		"it's\ttab",
		"line1\nline2",
		`C:\data\file`,
	}

	for _, v := range values {
		s := ParseSettings("", nil)
		s.Set("K", v)
		parsed, err := godotenv.Unmarshal(string(s.Render()))
		require.NoError(t, err)
		assert.Equal(t, v, parsed["K"], "rendered %q", string(s.Render()))
	}
}

// TestParseSettingsDoubleQuoted tests hand-written double-quoted values
func TestParseSettingsDoubleQuoted(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"plain", `K="abc"`, "abc"},
		{"no expansion", `K="$HOME/x"`, "$HOME/x"},
		{"escaped newline", `K="a\nb"`, "a\nb"},
		{"escaped quote", `K="say \"hi\""`, `say "hi"`},
		{"inline comment", `K="v" # note`, "v"},
		{"export prefix", `export K="v"`, "v"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ParseSettings("", []byte(tt.content+"\n"))
			assert.Equal(t, tt.want, s.Get("K"))
		})
	}
}

// TestSettingsSave tests persistence, backup and change reset
func TestSettingsSave(t *testing.T) {
	path := writeSettings(t, sampleSettings)
	s, err := LoadSettings(path)
	require.NoError(t, err)

	saved, err := s.SaveIfChanged()
	require.NoError(t, err)
	assert.False(t, saved, "unchanged document must not be written")

	s.Set("ADSBFI_ENABLED", "false")
	saved, err = s.SaveIfChanged()
	require.NoError(t, err)
	assert.True(t, saved)
	assert.False(t, s.Changed())

	backup, err := os.ReadFile(path + ".bak")
	require.NoError(t, err)
	assert.Equal(t, sampleSettings, string(backup))

	reloaded, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "false", reloaded.Get("ADSBFI_ENABLED"))
	assert.Equal(t, "keep me", reloaded.Get("CUSTOM_THING"))
}
