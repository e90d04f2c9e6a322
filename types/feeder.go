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

// Package types defines the core data structures for adsbfeed.
package types

// ProbeConfig tunes the connectivity probes
type ProbeConfig struct {
	TailnetSuffix      string `json:"tailnet_suffix"`      // Expected Tailscale DNS suffix (default: tail4d77be.ts.net)
	NetbirdInterface   string `json:"netbird_interface"`   // Overlay interface created by NetBird (default: wt0)
	TailscaleInterface string `json:"tailscale_interface"` // Overlay interface created by Tailscale (default: tailscale0)
}

// LoggingConfig represents configuration for the logging system
type LoggingConfig struct {
	Level   string   `json:"level"`   // debug, info, warn, error (default: info)
	Format  string   `json:"format"`  // text, json (default: text)
	Outputs []string `json:"outputs"` // ["console", "file", "journald"] (default: console)
	File    string   `json:"file"`    // Log file path (default: /var/log/adsbfeed/adsbfeed.log)
}

// HistoryConfig controls the run history database
type HistoryConfig struct {
	Enabled    bool   `json:"enabled"`
	Path       string `json:"path"`        // SQLite database path (default: <config dir>/history.db)
	MaxEntries int    `json:"max_entries"` // Oldest runs beyond this are pruned (0 = keep all)
}

// MetricsConfig controls the node-exporter textfile output
type MetricsConfig struct {
	Enabled  bool   `json:"enabled"`
	Textfile string `json:"textfile"` // e.g. /var/lib/node_exporter/textfile_collector/adsbfeed.prom
}

// FeederConfig represents the engine's own configuration (<config dir>/adsbfeed.json).
// It is separate from the user-editable .env settings document.
type FeederConfig struct {
	Probes  *ProbeConfig   `json:"probes"`  // Probe tuning (optional)
	Logging *LoggingConfig `json:"logging"` // Logging configuration (optional)
	History *HistoryConfig `json:"history"` // Run history (optional)
	Metrics *MetricsConfig `json:"metrics"` // Metrics textfile (optional)
	Version string         `json:"version"`
}
