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
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/we-are-mono/adsbfeed/types"
)

const (
	// DefaultTailnetSuffix is the DNS suffix of the TAKNET-PS tailnet
	DefaultTailnetSuffix = "tail4d77be.ts.net"

	feederConfigNamespace = "adsbfeed"
)

// LoadFeederConfig loads adsbfeed.json from the config directory.
// A missing file yields the defaults; missing sections are filled in.
func LoadFeederConfig() (*types.FeederConfig, error) {
	var config types.FeederConfig
	if err := LoadConfig(feederConfigNamespace, &config); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultFeederConfig(), nil
		}
		return nil, fmt.Errorf("failed to load feeder config: %w", err)
	}

	applyFeederDefaults(&config)
	return &config, nil
}

// SaveFeederConfig saves adsbfeed.json to the config directory.
func SaveFeederConfig(config *types.FeederConfig) error {
	return SaveConfig(feederConfigNamespace, config)
}

// DefaultFeederConfig returns the configuration used when adsbfeed.json is absent.
func DefaultFeederConfig() *types.FeederConfig {
	config := &types.FeederConfig{Version: "1.0"}
	applyFeederDefaults(config)
	return config
}

func applyFeederDefaults(config *types.FeederConfig) {
	if config.Version == "" {
		config.Version = "1.0"
	}

	if config.Probes == nil {
		config.Probes = &types.ProbeConfig{}
	}
	if config.Probes.TailnetSuffix == "" {
		config.Probes.TailnetSuffix = DefaultTailnetSuffix
	}
	if config.Probes.NetbirdInterface == "" {
		config.Probes.NetbirdInterface = "wt0"
	}
	if config.Probes.TailscaleInterface == "" {
		config.Probes.TailscaleInterface = "tailscale0"
	}

	if config.Logging == nil {
		config.Logging = &types.LoggingConfig{}
	}
	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}
	if config.Logging.Format == "" {
		config.Logging.Format = "text"
	}
	if len(config.Logging.Outputs) == 0 {
		config.Logging.Outputs = []string{"console"}
	}
	if config.Logging.File == "" {
		config.Logging.File = "/var/log/adsbfeed/adsbfeed.log"
	}

	if config.History == nil {
		config.History = &types.HistoryConfig{Enabled: true, MaxEntries: 500}
	}
	if config.History.Path == "" {
		config.History.Path = filepath.Join(GetConfigDir(), "history.db")
	}

	if config.Metrics == nil {
		config.Metrics = &types.MetricsConfig{}
	}
}
