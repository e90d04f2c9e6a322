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

// Package engine runs the full configuration pipeline: load, repair, select,
// resolve, assemble and persist.
package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/we-are-mono/adsbfeed/compose"
	"github.com/we-are-mono/adsbfeed/feeds"
	"github.com/we-are-mono/adsbfeed/history"
	"github.com/we-are-mono/adsbfeed/logger"
	"github.com/we-are-mono/adsbfeed/metrics"
	"github.com/we-are-mono/adsbfeed/probe"
	"github.com/we-are-mono/adsbfeed/repair"
	"github.com/we-are-mono/adsbfeed/sdr"
	"github.com/we-are-mono/adsbfeed/state"
	"github.com/we-are-mono/adsbfeed/system"
	"github.com/we-are-mono/adsbfeed/types"
	"github.com/we-are-mono/adsbfeed/uplink"
)

// Options configures an Engine. Zero values fall back to the production defaults.
type Options struct {
	Runner       system.CommandRunner
	Interfaces   probe.InterfaceLookup
	Logger       logger.Logger
	Warnings     *logger.WarningCollector
	Feeder       *types.FeederConfig
	Now          func() time.Time
	SettingsPath string
	ComposePath  string
	OutputsPath  string
	Timeouts     probe.Timeouts
	DryRun       bool
}

// Summary describes what a run did
type Summary struct {
	StartedAt      time.Time       `json:"started_at"`
	Host           string          `json:"host,omitempty"`
	Reason         string          `json:"reason"`
	FeedConfig     string          `json:"feed_config"`
	SDRMode        string          `json:"sdr_mode"`
	SDRDriver      string          `json:"sdr_driver"`
	SDRGain        string          `json:"sdr_gain"`
	Actions        []repair.Action `json:"actions,omitempty"`
	Services       []string        `json:"services"`
	FeedCount      int             `json:"feed_count"`
	Warnings       int             `json:"warnings"`
	Duration       time.Duration   `json:"duration"`
	Repaired       bool            `json:"repaired"`
	SettingsSaved  bool            `json:"settings_saved"`
	ComposeWritten bool            `json:"compose_written"`
	DryRun         bool            `json:"dry_run"`
}

// Engine wires the pipeline stages together
type Engine struct {
	opts     Options
	log      logger.Logger
	repairer *repair.Repairer
	resolver *sdr.Resolver
}

// New creates an engine
func New(opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	if opts.Feeder == nil {
		opts.Feeder = state.DefaultFeederConfig()
	}
	if opts.Runner == nil {
		opts.Runner = system.NewDefaultCommandRunner()
	}
	if opts.Interfaces == nil {
		opts.Interfaces = system.NewInspector(system.NewDefaultNetlinkClient(), nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	dir := state.GetConfigDir()
	if opts.SettingsPath == "" {
		opts.SettingsPath = filepath.Join(dir, state.SettingsFileName)
	}
	if opts.ComposePath == "" {
		opts.ComposePath = filepath.Join(dir, state.ComposeFileName)
	}
	if opts.OutputsPath == "" {
		opts.OutputsPath = filepath.Join(dir, state.OutputsFileName)
	}

	return &Engine{
		opts:     opts,
		log:      opts.Logger.With(logger.F("component", "engine")),
		repairer: repair.New(repair.DefaultTables(), opts.Logger),
		resolver: sdr.NewResolver(sdr.DefaultGainTable(), opts.Logger),
	}
}

// Probes returns the NetBird (primary) and Tailscale (secondary) probes
func (e *Engine) Probes() (*probe.Probe, *probe.Probe) {
	cfg := probe.Config{
		Runner:     e.opts.Runner,
		Interfaces: e.opts.Interfaces,
		Logger:     e.opts.Logger,
		Timeouts:   e.opts.Timeouts,
	}
	if p := e.opts.Feeder.Probes; p != nil {
		cfg.TailnetSuffix = p.TailnetSuffix
	}

	primary := cfg
	secondary := cfg
	if p := e.opts.Feeder.Probes; p != nil {
		primary.Interface = p.NetbirdInterface
		secondary.Interface = p.TailscaleInterface
	}
	return probe.NewNetbird(primary), probe.NewTailscale(secondary)
}

// Repair loads the settings, repairs them and saves them when changed
func (e *Engine) Repair() (*state.Settings, repair.Report, error) {
	settings, err := state.LoadSettings(e.opts.SettingsPath)
	if err != nil {
		return nil, repair.Report{}, err
	}

	report := e.repairer.Repair(settings)
	if report.Repaired && !e.opts.DryRun {
		if err := settings.Save(); err != nil {
			e.log.Error("Failed to save repaired settings", logger.F("error", err))
		} else {
			e.log.Info("Repaired settings saved", logger.F("path", e.opts.SettingsPath))
		}
	}
	return settings, report, nil
}

// Run executes one full pipeline pass. Only a missing settings file is an error;
// every other problem is logged and the run degrades gracefully.
func (e *Engine) Run(ctx context.Context) (*Summary, error) {
	start := e.opts.Now()
	warningsBefore := e.warningCount()

	summary := &Summary{StartedAt: start, DryRun: e.opts.DryRun}

	settings, report, err := e.Repair()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	summary.Repaired = report.Repaired
	summary.Actions = report.Actions
	repairSaved := report.Repaired && !e.opts.DryRun && !settings.Changed()

	outputs := e.loadOutputs()

	primaryProbe, _ := e.Probes()
	selector := uplink.NewSelector(primaryProbe, e.opts.Logger)
	builder := feeds.NewBuilder(selector, feeds.DefaultAggregators(), e.opts.Logger)

	result := builder.Build(ctx, settings, outputs)
	summary.Host = result.Host
	summary.Reason = result.Reason
	summary.FeedConfig = result.Config
	summary.FeedCount = result.Count

	settings.Set(feeds.ConfigKey, result.Config)
	if !e.opts.DryRun {
		saved, err := settings.SaveIfChanged()
		if err != nil {
			e.log.Error("Failed to save settings", logger.F("error", err))
		}
		summary.SettingsSaved = saved || repairSaved
	}

	primary := e.resolver.ResolvePrimary(settings)
	secondary := e.resolver.ResolveSecondary(settings)
	summary.SDRMode = string(primary.Mode)
	summary.SDRDriver = primary.Driver
	summary.SDRGain = primary.Gain

	project := compose.Assemble(settings, result.Config, primary, secondary)
	summary.Services = project.ServiceNames()

	if !e.opts.DryRun {
		if err := compose.WriteFile(e.opts.ComposePath, project); err != nil {
			e.log.Error("Failed to write compose file", logger.F("error", err))
		} else {
			summary.ComposeWritten = true
			e.log.Info("Compose file written", logger.F("path", e.opts.ComposePath))
		}
	}

	summary.Duration = e.opts.Now().Sub(start)
	summary.Warnings = e.warningCount() - warningsBefore

	if !e.opts.DryRun {
		e.recordHistory(summary)
		e.writeMetrics(summary)
	}

	e.log.Info("Configuration built",
		logger.F("feeds", summary.FeedCount),
		logger.F("repaired", summary.Repaired),
		logger.F("dry_run", summary.DryRun))
	return summary, nil
}

func (e *Engine) warningCount() int {
	if e.opts.Warnings == nil {
		return 0
	}
	return e.opts.Warnings.Count()
}

func (e *Engine) loadOutputs() []types.Output {
	doc, err := state.LoadOutputs(e.opts.OutputsPath)
	if err != nil {
		e.log.Warn("Ignoring outputs file", logger.F("error", err))
		return nil
	}

	outputs, errs := state.EnabledOutputs(doc)
	for _, err := range errs {
		e.log.Warn("Skipping invalid output", logger.F("error", err))
	}
	return outputs
}

func (e *Engine) recordHistory(summary *Summary) {
	cfg := e.opts.Feeder.History
	if cfg == nil || !cfg.Enabled || cfg.Path == "" {
		return
	}

	store, err := history.Open(cfg.Path, cfg.MaxEntries)
	if err != nil {
		e.log.Warn("Run history unavailable", logger.F("error", err))
		return
	}
	defer store.Close()

	if _, err := store.Record(history.Run{
		StartedAt: summary.StartedAt,
		Duration:  summary.Duration,
		Repaired:  summary.Repaired,
		DryRun:    summary.DryRun,
		Host:      summary.Host,
		Reason:    summary.Reason,
		FeedCount: summary.FeedCount,
		Feeds:     summary.FeedConfig,
		SDRMode:   summary.SDRMode,
		SDRDriver: summary.SDRDriver,
		Services:  summary.Services,
		Warnings:  summary.Warnings,
	}); err != nil {
		e.log.Warn("Failed to record run", logger.F("error", err))
	}
}

func (e *Engine) writeMetrics(summary *Summary) {
	cfg := e.opts.Feeder.Metrics
	if cfg == nil || !cfg.Enabled || cfg.Textfile == "" {
		return
	}

	c := metrics.NewCollector()
	c.Observe(metrics.RunStats{
		Finished:  summary.StartedAt.Add(summary.Duration),
		Duration:  summary.Duration,
		FeedCount: summary.FeedCount,
		Warnings:  summary.Warnings,
		Services:  len(summary.Services),
		Repaired:  summary.Repaired,
		Host:      summary.Host,
		Reason:    summary.Reason,
		SDRDriver: summary.SDRDriver,
		SDRMode:   summary.SDRMode,
	})
	if err := c.WriteTextfile(cfg.Textfile); err != nil {
		e.log.Warn("Failed to write metrics", logger.F("error", err))
	}
}
