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

// Package metrics exports the outcome of a build run as a node-exporter textfile.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "adsbfeed"

// RunStats is what a build run reports
type RunStats struct {
	Finished  time.Time
	Host      string
	Reason    string
	SDRDriver string
	SDRMode   string
	Duration  time.Duration
	FeedCount int
	Warnings  int
	Services  int
	Repaired  bool
}

// Collector holds the gauges for one run in a private registry
type Collector struct {
	registry *prometheus.Registry

	feeds     prometheus.Gauge
	warnings  prometheus.Gauge
	services  prometheus.Gauge
	repaired  prometheus.Gauge
	lastRun   prometheus.Gauge
	duration  prometheus.Gauge
	uplink    *prometheus.GaugeVec
	radioInfo *prometheus.GaugeVec
}

// NewCollector registers the run gauges
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		feeds: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "feeds_active",
			Help:      "Connectors in ULTRAFEEDER_CONFIG after the last run",
		}),
		warnings: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "warnings",
			Help:      "Warnings logged during the last run",
		}),
		services: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "services",
			Help:      "Services defined in the compose file",
		}),
		repaired: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "settings_repaired",
			Help:      "1 if the last run repaired the settings file",
		}),
		lastRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished",
		}),
		duration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_duration_seconds",
			Help:      "Wall time of the last run",
		}),
		uplink: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "priority_uplink_info",
			Help:      "Selected priority uplink host and selection reason",
		}, []string{"host", "reason"}),
		radioInfo: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sdr_info",
			Help:      "Resolved primary radio driver and mode",
		}, []string{"driver", "mode"}),
	}
}

// Observe sets every gauge from stats
func (c *Collector) Observe(stats RunStats) {
	c.feeds.Set(float64(stats.FeedCount))
	c.warnings.Set(float64(stats.Warnings))
	c.services.Set(float64(stats.Services))
	c.repaired.Set(boolToFloat(stats.Repaired))
	c.lastRun.Set(float64(stats.Finished.Unix()))
	c.duration.Set(stats.Duration.Seconds())

	c.uplink.Reset()
	c.uplink.WithLabelValues(stats.Host, stats.Reason).Set(1)
	c.radioInfo.Reset()
	c.radioInfo.WithLabelValues(stats.SDRDriver, stats.SDRMode).Set(1)
}

// Gatherer exposes the registry
func (c *Collector) Gatherer() prometheus.Gatherer {
	return c.registry
}

// WriteTextfile atomically writes the gauges to path
func (c *Collector) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create textfile directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
