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

package sdr

import (
	"math"
	"strconv"
	"strings"
)

// AutoGain lets the decoder pick the gain itself
const AutoGain = "autogain"

// Verdict explains how a requested gain was resolved
type Verdict string

const (
	VerdictExact         Verdict = "exact"
	VerdictClosest       Verdict = "closest"
	VerdictDefault       Verdict = "default"
	VerdictUnknownDriver Verdict = "unknown-driver"
)

// GainSpec lists the gains a driver accepts, in table order, and its recommended default
type GainSpec struct {
	Default string
	Valid   []string
}

// GainTable maps a driver name to its gain spec
type GainTable map[string]GainSpec

// DefaultGainTable returns the gain steps of the supported hardware
func DefaultGainTable() GainTable {
	return GainTable{
		"rtlsdr": {
			Default: AutoGain,
			Valid: []string{
				AutoGain, "0.0", "0.9", "1.4", "2.7", "3.7", "7.7", "8.7",
				"12.5", "14.4", "15.7", "16.6", "19.7", "20.7", "22.9",
				"25.4", "28.0", "29.7", "32.8", "33.8", "36.4", "37.2",
				"38.6", "40.2", "42.1", "43.4", "43.9", "44.5", "48.0", "49.6",
			},
		},
		"airspy": {
			Default: "21",
			Valid:   []string{"0", "3", "6", "9", "12", "15", "18", "21"},
		},
		"hackrf": {
			Default: "40",
			Valid:   []string{"0", "8", "16", "24", "32", "40", "48"},
		},
		"ftdi": {
			Default: AutoGain,
			Valid:   []string{AutoGain},
		},
	}
}

// Validate maps requested onto the driver's gain table. It never fails: the
// result is an exact member, the closest numeric member (first in table order
// on ties, in its table spelling), or the driver default. Unknown drivers
// accept any value.
func (t GainTable) Validate(driver, requested string) (string, Verdict) {
	spec, ok := t[driver]
	if !ok {
		return requested, VerdictUnknownDriver
	}

	gain := strings.TrimSpace(requested)
	for _, v := range spec.Valid {
		if v == gain {
			return v, VerdictExact
		}
	}

	want, err := strconv.ParseFloat(gain, 64)
	if err != nil || math.IsNaN(want) || math.IsInf(want, 0) {
		return spec.Default, VerdictDefault
	}

	best := ""
	bestDiff := math.Inf(1)
	for _, v := range spec.Valid {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			continue
		}
		if d := math.Abs(f - want); d < bestDiff {
			best, bestDiff = v, d
		}
	}

	if best == "" {
		return spec.Default, VerdictDefault
	}
	return best, VerdictClosest
}
