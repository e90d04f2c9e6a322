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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePort(t *testing.T) {
	tests := []struct {
		name      string
		port      int
		wantError bool
	}{
		{"beast port", 30004, false},
		{"lowest", 1, false},
		{"highest", 65535, false},
		{"zero", 0, true},
		{"negative", -1, true},
		{"too high", 65536, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePort(tt.port)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePortString(t *testing.T) {
	tests := []struct {
		name      string
		portStr   string
		wantError bool
	}{
		{"single port", "30105", false},
		{"range", "30004-30005", false},
		{"empty", "", true},
		{"not a number", "abc", true},
		{"reversed range", "30005-30004", true},
		{"equal range", "80-80", true},
		{"three parts", "1-2-3", true},
		{"out of range", "70000", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePortString(tt.portStr)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateHost(t *testing.T) {
	tests := []struct {
		name      string
		host      string
		wantError bool
	}{
		{"ipv4", "100.64.0.1", false},
		{"ipv6", "fd7a:115c:a1e0::1", false},
		{"fqdn", "vpn.tak-solutions.com", false},
		{"single label", "ultrafeeder", false},
		{"empty", "", true},
		{"underscore", "bad_host.example.com", true},
		{"leading dash", "-bad.example.com", true},
		{"space", "bad host", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHost(tt.host)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateIP(t *testing.T) {
	assert.NoError(t, ValidateIP("10.0.0.1"))
	assert.Error(t, ValidateIP(""))
	assert.Error(t, ValidateIP("10.0.0.256"))
}

func TestValidateCoordinates(t *testing.T) {
	tests := []struct {
		name      string
		fn        func(string) error
		value     string
		wantError bool
	}{
		{"lat unset", ValidateLatitude, "", false},
		{"lat valid", ValidateLatitude, "39.7392", false},
		{"lat pole", ValidateLatitude, "-90", false},
		{"lat too high", ValidateLatitude, "90.1", true},
		{"lat text", ValidateLatitude, "north", true},
		{"long valid", ValidateLongitude, "-104.9903", false},
		{"long too low", ValidateLongitude, "-180.5", true},
		{"alt valid", ValidateAltitude, "1609", false},
		{"alt too high", ValidateAltitude, "20000", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fn(tt.value)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateChoice(t *testing.T) {
	allowed := []string{"auto", "vpn", "fallback"}

	assert.NoError(t, ValidateChoice("", allowed))
	assert.NoError(t, ValidateChoice("VPN", allowed))
	err := ValidateChoice("direct", allowed)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "auto, vpn, fallback")

	assert.NoError(t, ValidateBool("True"))
	assert.Error(t, ValidateBool("yes"))
}

func TestValidateUUID(t *testing.T) {
	assert.NoError(t, ValidateUUID(""))
	assert.NoError(t, ValidateUUID("6ba7b810-9dad-11d1-80b4-00c04fd430c8"))
	assert.Error(t, ValidateUUID("not-a-uuid"))
}
