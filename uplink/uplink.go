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

// Package uplink chooses the endpoint for the priority (TAKNET-PS) feed.
package uplink

import (
	"context"
	"strings"

	"github.com/we-are-mono/adsbfeed/logger"
	"github.com/we-are-mono/adsbfeed/types"
)

// Reason tags are diagnostic only and never parsed downstream
const (
	ReasonVPNForced      = "vpn-forced"
	ReasonFallbackForced = "fallback-forced"
	ReasonNetbirdActive  = "netbird-active"
	ReasonVPNInactive    = "vpn-inactive"
	ReasonVPNFallback    = "vpn-fallback"
	ReasonFallbackOnly   = "fallback-only"
	ReasonDisabled       = "disabled"
)

// Setting keys
const (
	KeyEnabled      = "TAKNET_PS_ENABLED"
	KeyVPNHost      = "TAKNET_PS_SERVER_HOST_VPN"
	KeyFallbackHost = "TAKNET_PS_SERVER_HOST_FALLBACK"
	KeyPort         = "TAKNET_PS_SERVER_PORT"
	KeyMode         = "TAKNET_PS_CONNECTION_MODE"
	KeyMLATEnabled  = "TAKNET_PS_MLAT_ENABLED"
	KeyMLATPort     = "TAKNET_PS_MLAT_PORT"
)

// Prober reports live VPN state
type Prober interface {
	Check(ctx context.Context) types.ProbeResult
}

// Reader is the subset of the settings store needed to build the uplink config
type Reader interface {
	GetDefault(key, def string) string
	Bool(key string, def bool) bool
	Int(key string, def int) int
}

// FromSettings reads the priority uplink configuration, applying the documented defaults for absent keys
func FromSettings(r Reader) types.PriorityUplink {
	return types.PriorityUplink{
		Enabled:      r.Bool(KeyEnabled, true),
		VPNHost:      strings.TrimSpace(r.GetDefault(KeyVPNHost, "vpn.tak-solutions.com")),
		FallbackHost: strings.TrimSpace(r.GetDefault(KeyFallbackHost, "adsb.tak-solutions.com")),
		Port:         r.Int(KeyPort, 30004),
		Mode:         types.ConnectionMode(strings.ToLower(strings.TrimSpace(r.GetDefault(KeyMode, string(types.ModeAuto))))),
		MLATEnabled:  r.Bool(KeyMLATEnabled, true),
		MLATPort:     r.Int(KeyMLATPort, 30105),
	}
}

// Selector picks the effective priority host from mode and the primary probe
type Selector struct {
	primary Prober
	log     logger.Logger
}

// NewSelector creates a selector consulting only the primary probe
func NewSelector(primary Prober, log logger.Logger) *Selector {
	if log == nil {
		log = logger.NewNop()
	}
	return &Selector{primary: primary, log: log.With(logger.F("component", "uplink"))}
}

// Select returns the host for the priority feed and a reason tag.
// An empty host means the priority feed is omitted.
func (s *Selector) Select(ctx context.Context, cfg types.PriorityUplink) (string, string) {
	mode := types.ConnectionMode(strings.ToLower(strings.TrimSpace(string(cfg.Mode))))
	vpnHost := strings.TrimSpace(cfg.VPNHost)
	fallback := strings.TrimSpace(cfg.FallbackHost)

	switch {
	case mode == types.ModeVPN && vpnHost != "":
		s.log.Info("Forced to VPN host", logger.F("host", vpnHost))
		return vpnHost, ReasonVPNForced
	case mode == types.ModeFallback && fallback != "":
		s.log.Info("Forced to fallback host", logger.F("host", fallback))
		return fallback, ReasonFallbackForced
	case mode == types.ModeAuto && (vpnHost != "" || fallback != ""):
		connected := false
		if s.primary != nil {
			connected = s.primary.Check(ctx).Connected
		}
		if connected {
			if vpnHost == "" {
				s.log.Warn("NetBird active but no VPN host configured, priority feed omitted")
			} else {
				s.log.Info("NetBird active, using VPN host", logger.F("host", vpnHost))
			}
			return vpnHost, ReasonNetbirdActive
		}
		if fallback == "" {
			s.log.Warn("NetBird inactive and no fallback host configured, priority feed omitted")
		} else {
			s.log.Warn("NetBird inactive, using fallback host", logger.F("host", fallback))
		}
		return fallback, ReasonVPNInactive
	}

	if vpnHost != "" {
		return vpnHost, ReasonVPNFallback
	}
	if fallback != "" {
		return fallback, ReasonFallbackOnly
	}

	s.log.Warn("No priority uplink host configured")
	return "", ReasonDisabled
}
