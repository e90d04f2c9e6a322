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

// Package repair heals stale or missing settings carried over from older releases.
package repair

import (
	"strings"

	"github.com/we-are-mono/adsbfeed/logger"
)

// Document is the subset of the settings store the repairer mutates
type Document interface {
	Lookup(key string) (string, bool)
	Set(key, value string)
	Delete(key string)
}

// Default is a required key and the value it gets when missing or empty
type Default struct {
	Key   string
	Value string
}

// Rename moves a deprecated key to its replacement
type Rename struct {
	From string
	To   string
}

// Tables drives every repair decision
type Tables struct {
	AddressMigrations map[string]string // retired endpoint -> canonical endpoint
	Required          []Default
	Renames           []Rename
	AddressKeys       []string // keys whose values are checked against AddressMigrations
}

// DefaultTables returns the repair data for the current release
func DefaultTables() Tables {
	return Tables{
		Renames: []Rename{
			{From: "TAKNET_PS_SERVER_HOST_PRIMARY", To: "TAKNET_PS_SERVER_HOST_VPN"},
			{From: "SDR_1090_TYPE", To: "SDR_1090_DRIVER"},
			{From: "READSB_DEVICE", To: "SDR_1090_DEVICE"},
			{From: "READSB_GAIN", To: "SDR_1090_GAIN"},
			{From: "FR24_SHARING_KEY", To: "FR24_KEY"},
		},
		Required: []Default{
			{Key: "TAKNET_PS_ENABLED", Value: "true"},
			{Key: "TAKNET_PS_SERVER_HOST_VPN", Value: "vpn.tak-solutions.com"},
			{Key: "TAKNET_PS_SERVER_HOST_FALLBACK", Value: "adsb.tak-solutions.com"},
			{Key: "TAKNET_PS_SERVER_PORT", Value: "30004"},
			{Key: "TAKNET_PS_CONNECTION_MODE", Value: "auto"},
			{Key: "TAKNET_PS_MLAT_ENABLED", Value: "true"},
			{Key: "TAKNET_PS_MLAT_PORT", Value: "30105"},
			{Key: "SDR_1090_DRIVER", Value: "rtlsdr"},
			{Key: "SDR_1090_DEVICE", Value: "0"},
			{Key: "SDR_1090_GAIN", Value: "autogain"},
			{Key: "USE_SOAPYSDR", Value: "auto"},
		},
		AddressMigrations: map[string]string{
			"100.117.34.88":            "vpn.tak-solutions.com",
			"104.225.219.254":          "adsb.tak-solutions.com",
			"tailscale.leckliter.net":  "vpn.tak-solutions.com",
			"adsb.leckliter.net":       "adsb.tak-solutions.com",
			"secure.tak-solutions.com": "vpn.tak-solutions.com",
		},
		AddressKeys: []string{
			"TAKNET_PS_SERVER_HOST_VPN",
			"TAKNET_PS_SERVER_HOST_FALLBACK",
		},
	}
}

// Action records one change made to the settings
type Action struct {
	Key        string `json:"key"`
	Old        string `json:"old,omitempty"`
	New        string `json:"new"`
	From       string `json:"from,omitempty"` // deprecated key for renames
	ChangeType string `json:"change_type"`    // "renamed", "defaulted", "migrated"
}

// Report summarizes a repair pass
type Report struct {
	Actions  []Action `json:"actions,omitempty"`
	Repaired bool     `json:"repaired"`
}

// Repairer applies Tables to a settings document
type Repairer struct {
	log    logger.Logger
	tables Tables
}

// New creates a repairer
func New(tables Tables, log logger.Logger) *Repairer {
	if log == nil {
		log = logger.NewNop()
	}
	return &Repairer{
		tables: tables,
		log:    log.With(logger.F("component", "repair")),
	}
}

// Repair renames deprecated keys, fills required keys, then migrates retired
// endpoints. Running it on its own output changes nothing.
func (r *Repairer) Repair(doc Document) Report {
	var report Report
	record := func(a Action) {
		report.Actions = append(report.Actions, a)
		report.Repaired = true
	}

	for _, rn := range r.tables.Renames {
		old, ok := doc.Lookup(rn.From)
		if !ok {
			continue
		}
		if cur, exists := doc.Lookup(rn.To); exists && strings.TrimSpace(cur) != "" {
			continue
		}
		doc.Set(rn.To, old)
		doc.Delete(rn.From)
		r.log.Info("Renamed deprecated setting", logger.F("from", rn.From), logger.F("to", rn.To))
		record(Action{Key: rn.To, From: rn.From, New: old, ChangeType: "renamed"})
	}

	for _, d := range r.tables.Required {
		cur, ok := doc.Lookup(d.Key)
		if ok && strings.TrimSpace(cur) != "" {
			continue
		}
		doc.Set(d.Key, d.Value)
		r.log.Warn("Missing setting, auto-configuring", logger.F("key", d.Key), logger.F("value", d.Value))
		record(Action{Key: d.Key, Old: cur, New: d.Value, ChangeType: "defaulted"})
	}

	for _, key := range r.tables.AddressKeys {
		cur, ok := doc.Lookup(key)
		if !ok {
			continue
		}
		next, retired := r.tables.AddressMigrations[strings.TrimSpace(cur)]
		if !retired || next == cur {
			continue
		}
		doc.Set(key, next)
		r.log.Info("Migrated retired endpoint", logger.F("key", key), logger.F("old", cur), logger.F("new", next))
		record(Action{Key: key, Old: cur, New: next, ChangeType: "migrated"})
	}

	if report.Repaired {
		r.log.Info("Configuration auto-repaired", logger.F("actions", len(report.Actions)))
	}
	return report
}
