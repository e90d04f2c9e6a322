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
	"strconv"
	"strings"

	"github.com/we-are-mono/adsbfeed/sdr"
)

// Reader is the subset of the settings store the checks read
type Reader interface {
	Lookup(key string) (string, bool)
}

// ValidateSettings checks the values the build pipeline depends on and reports
// every problem at once. Absent keys are not errors; repair fills them in.
func ValidateSettings(s Reader, gains sdr.GainTable) error {
	get := func(key string) string {
		v, _ := s.Lookup(key)
		return strings.TrimSpace(v)
	}

	ke := NewKeyErrors()

	ke.Add("FEEDER_LAT", ValidateLatitude(get("FEEDER_LAT")))
	ke.Add("FEEDER_LONG", ValidateLongitude(get("FEEDER_LONG")))
	ke.Add("FEEDER_ALT_M", ValidateAltitude(get("FEEDER_ALT_M")))
	ke.Add("FEEDER_UUID", ValidateUUID(get("FEEDER_UUID")))

	for _, key := range []string{"TAKNET_PS_SERVER_HOST_VPN", "TAKNET_PS_SERVER_HOST_FALLBACK"} {
		if v := get(key); v != "" {
			ke.Add(key, ValidateHost(v))
		}
	}
	for _, key := range []string{"TAKNET_PS_SERVER_PORT", "TAKNET_PS_MLAT_PORT"} {
		if v := get(key); v != "" {
			ke.Add(key, ValidatePortString(v))
		}
	}
	for _, key := range []string{
		"TAKNET_PS_ENABLED", "TAKNET_PS_MLAT_ENABLED", "FR24_ENABLED", "ADSBFI_ENABLED",
		"ADSBLOL_ENABLED", "ADSBX_ENABLED", "AIRPLANESLIVE_ENABLED", "DUMP978_ENABLED",
	} {
		ke.Add(key, ValidateBool(get(key)))
	}

	ke.Add("TAKNET_PS_CONNECTION_MODE", ValidateChoice(get("TAKNET_PS_CONNECTION_MODE"), []string{"auto", "vpn", "fallback"}))
	ke.Add("USE_SOAPYSDR", ValidateChoice(get("USE_SOAPYSDR"), []string{"auto", "true", "false", "native", "soapysdr", "soapy", "abstraction"}))

	if idx := get("SDR_1090_DEVICE"); idx != "" {
		if _, err := strconv.Atoi(idx); err != nil && get("SDR_1090_SERIAL") == "" {
			ke.AddMsg("SDR_1090_DEVICE", err, "device index must be numeric unless a serial is set")
		}
	}

	checkGain := func(driverKey, gainKey string) {
		driver := strings.ToLower(get(driverKey))
		gain := get(gainKey)
		if driver == "" || gain == "" {
			return
		}
		if _, known := gains[driver]; !known {
			return
		}
		if resolved, verdict := gains.Validate(driver, gain); verdict != sdr.VerdictExact {
			ke.AddMsg(gainKey, errInvalidGain(driver, gain), "will be replaced with "+resolved)
		}
	}
	checkGain("SDR_1090_DRIVER", "SDR_1090_GAIN")
	checkGain("SDR_978_TYPE", "SDR_978_GAIN")

	return ke.Err()
}

type gainError struct {
	driver string
	gain   string
}

func (e *gainError) Error() string {
	return "gain " + e.gain + " is not a valid step for " + e.driver
}

func errInvalidGain(driver, gain string) error {
	return &gainError{driver: driver, gain: gain}
}
