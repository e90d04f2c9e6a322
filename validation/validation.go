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

// Package validation provides reusable validation helpers for feeder settings.
package validation

import (
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

var domainRegex = regexp.MustCompile(`^([a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)*[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?$`)

// ValidatePort validates that a port number is in the valid range [1, 65535].
func ValidatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port %d out of valid range [1, 65535]", port)
	}
	return nil
}

// ValidatePortString validates a port number or port range string.
// Valid formats: "80", "9273-9274"
func ValidatePortString(portStr string) error {
	if portStr == "" {
		return fmt.Errorf("port string cannot be empty")
	}

	if strings.Contains(portStr, "-") {
		parts := strings.Split(portStr, "-")
		if len(parts) != 2 {
			return fmt.Errorf("invalid port range format: %s (expected format: 'start-end')", portStr)
		}

		start, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return fmt.Errorf("invalid start port in range %s: %w", portStr, err)
		}
		end, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return fmt.Errorf("invalid end port in range %s: %w", portStr, err)
		}

		if err := ValidatePort(start); err != nil {
			return fmt.Errorf("invalid start port in range %s: %w", portStr, err)
		}
		if err := ValidatePort(end); err != nil {
			return fmt.Errorf("invalid end port in range %s: %w", portStr, err)
		}
		if start >= end {
			return fmt.Errorf("invalid port range %s: start port must be less than end port", portStr)
		}
		return nil
	}

	port, err := strconv.Atoi(strings.TrimSpace(portStr))
	if err != nil {
		return fmt.Errorf("invalid port number %s: %w", portStr, err)
	}
	return ValidatePort(port)
}

// ValidateIP validates that a string is a valid IPv4 or IPv6 address.
func ValidateIP(ip string) error {
	if ip == "" {
		return fmt.Errorf("IP address cannot be empty")
	}
	if net.ParseIP(ip) == nil {
		return fmt.Errorf("invalid IP address: %s", ip)
	}
	return nil
}

// ValidateDomain validates a DNS host name (RFC 1035 lengths).
func ValidateDomain(domain string) error {
	if domain == "" {
		return fmt.Errorf("host name cannot be empty")
	}
	if len(domain) > 253 {
		return fmt.Errorf("domain name too long: %s (max 253 characters)", domain)
	}
	if !domainRegex.MatchString(domain) {
		return fmt.Errorf("invalid domain name: %s", domain)
	}
	return nil
}

// ValidateHost accepts an IP address or a DNS host name.
func ValidateHost(host string) error {
	if host == "" {
		return fmt.Errorf("host cannot be empty")
	}
	if net.ParseIP(host) != nil {
		return nil
	}
	return ValidateDomain(host)
}

// ValidateChoice validates that value is one of allowed (case-insensitive).
// An empty value is accepted since most choices have a default.
func ValidateChoice(value string, allowed []string) error {
	if value == "" {
		return nil
	}
	for _, a := range allowed {
		if strings.EqualFold(value, a) {
			return nil
		}
	}
	return fmt.Errorf("invalid value %s (must be one of: %s)", value, strings.Join(allowed, ", "))
}

// ValidateBool accepts "true" or "false" in any case.
func ValidateBool(value string) error {
	return ValidateChoice(value, []string{"true", "false"})
}

func validateRange(kind, value string, min, max float64) error {
	if value == "" {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fmt.Errorf("invalid %s %s: not a number", kind, value)
	}
	if f < min || f > max {
		return fmt.Errorf("%s %s out of valid range [%g, %g]", kind, value, min, max)
	}
	return nil
}

// ValidateLatitude validates a decimal latitude. Empty means unset.
func ValidateLatitude(lat string) error {
	return validateRange("latitude", lat, -90, 90)
}

// ValidateLongitude validates a decimal longitude. Empty means unset.
func ValidateLongitude(long string) error {
	return validateRange("longitude", long, -180, 180)
}

// ValidateAltitude validates an antenna altitude in meters. Empty means unset.
func ValidateAltitude(alt string) error {
	return validateRange("altitude", alt, -500, 10000)
}

// ValidateUUID validates a feeder identifier. Empty means unset.
func ValidateUUID(id string) error {
	if id == "" {
		return nil
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid UUID %s: %w", id, err)
	}
	return nil
}
