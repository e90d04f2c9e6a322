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

// Package feeds assembles the ordered ULTRAFEEDER_CONFIG connector list.
//
// The priority uplink always comes first, followed by the aggregators in
// declaration order, user-defined outputs, and finally the 978 MHz UAT input.
package feeds

import (
	"context"
	"strings"

	"github.com/we-are-mono/adsbfeed/logger"
	"github.com/we-are-mono/adsbfeed/types"
	"github.com/we-are-mono/adsbfeed/uplink"
)

// ConfigKey is the settings key the joined feed list is written to
const ConfigKey = "ULTRAFEEDER_CONFIG"

// PriorityName identifies the priority uplink's entries
const PriorityName = "taknet-ps"

// Reader is the subset of the settings store the builder reads
type Reader interface {
	uplink.Reader
	GetNonEmpty(key, def string) string
}

// HostSelector picks the priority uplink endpoint
type HostSelector interface {
	Select(ctx context.Context, cfg types.PriorityUplink) (string, string)
}

// Aggregator is a public feed network the station can share with
type Aggregator struct {
	Name          string
	EnableKey     string
	CredentialKey string // empty when no credential is required
	CredentialArg string // when set, the credential is appended to every connector as CredentialArg=<value>
	Feeds         []types.FeedEntry
}

// DefaultAggregators returns the supported aggregators in emission order.
// FlightRadar24 runs in its own container and has no connector.
func DefaultAggregators() []Aggregator {
	return []Aggregator{
		{
			Name:          "FlightRadar24",
			EnableKey:     "FR24_ENABLED",
			CredentialKey: "FR24_KEY",
		},
		{
			Name:      "adsb.fi",
			EnableKey: "ADSBFI_ENABLED",
			Feeds: []types.FeedEntry{
				{Protocol: types.ProtocolBeast, Host: "feed.adsb.fi", Port: 30004, Variant: "beast_reduce_plus_out"},
				{Protocol: types.ProtocolMLAT, Host: "feed.adsb.fi", Port: 31090, Variant: "39003"},
			},
		},
		{
			Name:          "adsb.lol",
			EnableKey:     "ADSBLOL_ENABLED",
			CredentialKey: "FEEDER_UUID",
			Feeds: []types.FeedEntry{
				{Protocol: types.ProtocolBeast, Host: "feed.adsb.lol", Port: 30004, Variant: "beast_reduce_plus_out"},
				{Protocol: types.ProtocolMLAT, Host: "in.adsb.lol", Port: 31090, Variant: "39001"},
			},
		},
		{
			Name:          "ADSBexchange",
			EnableKey:     "ADSBX_ENABLED",
			CredentialKey: "FEEDER_UUID",
			CredentialArg: "uuid",
			Feeds: []types.FeedEntry{
				{Protocol: types.ProtocolBeast, Host: "feed1.adsbexchange.com", Port: 30004, Variant: "beast_reduce_plus_out"},
				{Protocol: types.ProtocolMLAT, Host: "feed.adsbexchange.com", Port: 31090, Variant: "39004"},
			},
		},
		{
			Name:      "Airplanes.Live",
			EnableKey: "AIRPLANESLIVE_ENABLED",
			Feeds: []types.FeedEntry{
				{Protocol: types.ProtocolBeast, Host: "feed.airplanes.live", Port: 30004, Variant: "beast_reduce_plus_out"},
				{Protocol: types.ProtocolMLAT, Host: "feed.airplanes.live", Port: 31090, Variant: "39002"},
			},
		},
	}
}

// Result is the assembled feed list
type Result struct {
	Host    string            `json:"host,omitempty"`
	Reason  string            `json:"reason"`
	Config  string            `json:"config"`
	Entries []types.FeedEntry `json:"entries"`
	Count   int               `json:"count"`
}

// Builder assembles the feed list
type Builder struct {
	selector    HostSelector
	log         logger.Logger
	aggregators []Aggregator
}

// NewBuilder creates a builder for the given aggregators
func NewBuilder(selector HostSelector, aggregators []Aggregator, log logger.Logger) *Builder {
	if log == nil {
		log = logger.NewNop()
	}
	return &Builder{
		selector:    selector,
		aggregators: aggregators,
		log:         log.With(logger.F("component", "feeds")),
	}
}

// Build emits the connectors for every enabled feed. Missing credentials and
// a missing priority host skip the affected feed with a warning.
func (b *Builder) Build(ctx context.Context, s Reader, outputs []types.Output) Result {
	var res Result

	res.Entries = append(res.Entries, b.priority(ctx, s, &res)...)

	for _, agg := range b.aggregators {
		res.Entries = append(res.Entries, b.aggregator(s, agg)...)
	}

	for _, o := range outputs {
		if !o.Enabled || o.Primary {
			continue
		}
		variant := "beast_out"
		if o.Type != "" && o.Type != "beast" {
			variant = o.Type
		}
		name := o.Name
		if name == "" {
			name = o.ID
		}
		res.Entries = append(res.Entries, types.FeedEntry{
			Aggregator: name,
			Protocol:   types.ProtocolBeast,
			Host:       o.Host,
			Port:       o.Port,
			Variant:    variant,
		})
		b.log.Info("Custom output", logger.F("name", name), logger.F("host", o.Host), logger.F("port", o.Port))
	}

	if s.Bool("DUMP978_ENABLED", false) {
		res.Entries = append(res.Entries, types.FeedEntry{
			Aggregator: "dump978",
			Protocol:   types.ProtocolUAT,
			Host:       "dump978",
			Port:       30978,
			Variant:    "uat_in",
		})
		b.log.Info("978 MHz UAT input enabled")
	}

	res.Config = types.JoinFeeds(res.Entries)
	res.Count = len(res.Entries)
	b.log.Info("Feed list assembled", logger.F("count", res.Count))
	return res
}

func (b *Builder) priority(ctx context.Context, s Reader, res *Result) []types.FeedEntry {
	cfg := uplink.FromSettings(s)
	if !cfg.Enabled {
		res.Reason = uplink.ReasonDisabled
		b.log.Warn("TAKNET-PS priority feed disabled")
		return nil
	}

	host, reason := b.selector.Select(ctx, cfg)
	res.Host = host
	res.Reason = reason
	if host == "" {
		b.log.Warn("No valid TAKNET-PS host configuration, priority feed skipped")
		return nil
	}

	entries := []types.FeedEntry{{
		Aggregator: PriorityName,
		Protocol:   types.ProtocolBeast,
		Host:       host,
		Port:       cfg.Port,
		Variant:    "beast_reduce_plus_out",
	}}
	b.log.Info("TAKNET-PS beast feed", logger.F("host", host), logger.F("port", cfg.Port), logger.F("reason", reason))

	if cfg.MLATEnabled {
		entries = append(entries, types.FeedEntry{
			Aggregator: PriorityName,
			Protocol:   types.ProtocolMLAT,
			Host:       host,
			Port:       cfg.MLATPort,
			Variant:    "39001",
		})
		b.log.Info("TAKNET-PS MLAT feed", logger.F("host", host), logger.F("port", cfg.MLATPort))
	}
	return entries
}

func (b *Builder) aggregator(s Reader, agg Aggregator) []types.FeedEntry {
	if !s.Bool(agg.EnableKey, false) {
		return nil
	}

	credential := ""
	if agg.CredentialKey != "" {
		credential = strings.TrimSpace(s.GetNonEmpty(agg.CredentialKey, ""))
		if credential == "" {
			b.log.Warn("Aggregator enabled without credential, skipping",
				logger.F("aggregator", agg.Name), logger.F("key", agg.CredentialKey))
			return nil
		}
	}

	if len(agg.Feeds) == 0 {
		b.log.Info("Aggregator runs in a dedicated container", logger.F("aggregator", agg.Name))
		return nil
	}

	entries := make([]types.FeedEntry, 0, len(agg.Feeds))
	for _, f := range agg.Feeds {
		f.Aggregator = agg.Name
		if agg.CredentialArg != "" {
			f.ExtraParams = append(append([]types.Param(nil), f.ExtraParams...), types.Param{Key: agg.CredentialArg, Value: credential})
		}
		entries = append(entries, f)
	}
	b.log.Info("Aggregator enabled", logger.F("aggregator", agg.Name))
	return entries
}
