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

// Package sdr resolves radio driver configuration for the decoders.
//
// The resolver decides, per radio, between the hardware-native driver and the
// SoapySDR abstraction layer, and clamps the requested gain to the hardware's
// gain table.
package sdr

import (
	"strings"

	"github.com/we-are-mono/adsbfeed/logger"
	"github.com/we-are-mono/adsbfeed/types"
)

// Drivers with first-class native support in readsb
const (
	DriverRTLSDR = "rtlsdr"
	DriverAirspy = "airspy"
	DriverFTDI   = "ftdi"
)

// Reader is the subset of the settings store the resolver reads
type Reader interface {
	Get(key string) string
	GetNonEmpty(key, def string) string
}

// Resolution is the effective configuration of the primary radio
type Resolution struct {
	Radio          types.RadioConfig `json:"radio"`
	Mode           types.DriverMode  `json:"mode"` // native or abstraction
	Driver         string            `json:"driver"`
	Gain           string            `json:"gain"`
	DeviceSelector string            `json:"device_selector"`
	Environment    []string          `json:"environment"`
}

// Secondary is the effective configuration of the optional 978 MHz radio
type Secondary struct {
	Driver  string `json:"driver"`
	Path    string `json:"path"` // device index or device node
	Gain    string `json:"gain"`
	Enabled bool   `json:"enabled"`
}

// FTDI reports whether the radio is an FTDI UATRadio, which binds the hackrf driver
func (s Secondary) FTDI() bool {
	return s.Driver == DriverFTDI
}

// Resolver turns radio settings into decoder environment
type Resolver struct {
	log   logger.Logger
	gains GainTable
}

// NewResolver creates a resolver backed by gains
func NewResolver(gains GainTable, log logger.Logger) *Resolver {
	if log == nil {
		log = logger.NewNop()
	}
	return &Resolver{gains: gains, log: log.With(logger.F("component", "sdr"))}
}

// ValidateGain clamps requested to the driver's table and logs any substitution
func (r *Resolver) ValidateGain(driver, requested string) string {
	gain, verdict := r.gains.Validate(driver, requested)
	switch verdict {
	case VerdictUnknownDriver:
		r.log.Warn("Unknown driver, accepting gain as given", logger.F("driver", driver), logger.F("gain", requested))
	case VerdictClosest:
		r.log.Warn("Gain not valid for driver, using closest", logger.F("driver", driver), logger.F("requested", requested), logger.F("gain", gain))
	case VerdictDefault:
		r.log.Warn("Invalid gain for driver, using default", logger.F("driver", driver), logger.F("requested", requested), logger.F("gain", gain))
	}
	return gain
}

// PrimaryRadio reads the 1090 MHz radio settings, falling back to the legacy keys
func PrimaryRadio(s Reader) types.RadioConfig {
	return types.RadioConfig{
		Driver:        strings.ToLower(s.GetNonEmpty("SDR_1090_DRIVER", s.GetNonEmpty("SDR_1090_TYPE", DriverRTLSDR))),
		Serial:        strings.TrimSpace(s.Get("SDR_1090_SERIAL")),
		DeviceIndex:   s.GetNonEmpty("SDR_1090_DEVICE", s.GetNonEmpty("READSB_DEVICE", "0")),
		RequestedGain: s.GetNonEmpty("SDR_1090_GAIN", s.GetNonEmpty("READSB_GAIN", AutoGain)),
		Mode:          types.ParseDriverMode(s.Get("USE_SOAPYSDR")),
	}
}

// ResolvePrimary resolves the 1090 MHz radio from settings
func (r *Resolver) ResolvePrimary(s Reader) Resolution {
	return r.Resolve(PrimaryRadio(s))
}

// Resolve picks the driver mode for radio and builds the readsb environment
func (r *Resolver) Resolve(radio types.RadioConfig) Resolution {
	gain := r.ValidateGain(radio.Driver, radio.RequestedGain)

	mode := radio.Mode
	if mode != types.DriverNative && mode != types.DriverAbstraction {
		if radio.Driver == DriverRTLSDR {
			mode = types.DriverNative
		} else {
			mode = types.DriverAbstraction
		}
	}

	res := Resolution{Radio: radio, Driver: radio.Driver, Gain: gain}

	if mode == types.DriverNative {
		switch radio.Driver {
		case DriverRTLSDR:
			res.Mode = types.DriverNative
			res.DeviceSelector = radio.DeviceIndex
			res.Environment = []string{
				"READSB_DEVICE_TYPE=rtlsdr",
				"READSB_RTLSDR_DEVICE=" + radio.DeviceIndex,
				"READSB_GAIN=" + gain,
			}
		case DriverAirspy:
			if radio.Serial != "" {
				res.Mode = types.DriverNative
				res.DeviceSelector = radio.Serial
				res.Environment = []string{
					"READSB_DEVICE_TYPE=airspy",
					"READSB_AIRSPY_DEVICE=" + radio.Serial,
					"READSB_GAIN=" + gain,
				}
			} else {
				r.log.Warn("Airspy serial missing, falling back to SoapySDR")
			}
		default:
			r.log.Warn("No native driver, falling back to SoapySDR", logger.F("driver", radio.Driver))
		}
	}

	if res.Mode == "" {
		selector := "driver=" + radio.Driver + ",index=" + radio.DeviceIndex
		if radio.Serial != "" {
			selector = "driver=" + radio.Driver + ",serial=" + radio.Serial
		}
		res.Mode = types.DriverAbstraction
		res.DeviceSelector = selector
		res.Environment = []string{
			"READSB_DEVICE_TYPE=soapysdr",
			"READSB_SOAPY_DEVICE=" + selector,
			"READSB_GAIN=" + gain,
		}
	}

	r.log.Info("Resolved radio",
		logger.F("driver", res.Driver),
		logger.F("mode", string(res.Mode)),
		logger.F("device", res.DeviceSelector),
		logger.F("gain", res.Gain))
	return res
}

// ResolveSecondary resolves the optional 978 MHz radio.
// An empty or "disabled" device means no secondary radio.
func (r *Resolver) ResolveSecondary(s Reader) Secondary {
	device := strings.TrimSpace(s.Get("SDR_978_DEVICE"))
	if device == "" || strings.EqualFold(device, "disabled") {
		return Secondary{}
	}

	driver := strings.ToLower(s.GetNonEmpty("SDR_978_TYPE", s.GetNonEmpty("SDR_978_DRIVER", DriverRTLSDR)))
	return Secondary{
		Enabled: true,
		Driver:  driver,
		Path:    s.GetNonEmpty("SDR_978_PATH", "1"),
		Gain:    r.ValidateGain(driver, s.GetNonEmpty("SDR_978_GAIN", AutoGain)),
	}
}
