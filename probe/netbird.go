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

package probe

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/we-are-mono/adsbfeed/logger"
	"github.com/we-are-mono/adsbfeed/types"
)

const netbirdBinary = "netbird"

// NewNetbird creates the primary VPN probe: presence, JSON status, text status, then interface
func NewNetbird(cfg Config) *Probe {
	cfg.setDefaults()
	if cfg.Interface == "" {
		cfg.Interface = "wt0"
	}
	c := &cfg
	return New(types.ToolNetbird, cfg.Logger,
		&presence{cfg: c, tool: netbirdBinary},
		&netbirdJSON{cfg: c},
		&netbirdText{cfg: c},
		&overlayInterface{cfg: c},
	)
}

// netbirdStatus covers the field spellings seen across client versions
type netbirdStatus struct {
	ManagementState json.RawMessage `json:"managementState"`
	Management      json.RawMessage `json:"management"`
	LocalPeerState  struct {
		IP string `json:"ip"`
	} `json:"localPeerState"`
	NetbirdIP string `json:"netbirdIp"`
	IP        string `json:"ip"`
}

// managementConnected accepts either {"connected": bool} or a "Connected" string
func managementConnected(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}

	var obj struct {
		Connected bool `json:"connected"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Connected
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.EqualFold(strings.TrimSpace(s), "connected")
	}
	return false
}

// parseNetbirdJSON returns the connection state and overlay IP from `netbird status --json`
func parseNetbirdJSON(data []byte) (bool, string, error) {
	var status netbirdStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return false, "", err
	}

	mgmt := status.ManagementState
	if len(mgmt) == 0 {
		mgmt = status.Management
	}

	ip := status.NetbirdIP
	if ip == "" {
		ip = status.LocalPeerState.IP
	}
	if ip == "" {
		ip = status.IP
	}
	return managementConnected(mgmt), stripCIDR(ip), nil
}

type netbirdJSON struct {
	cfg *Config
}

func (s *netbirdJSON) Name() string { return SourceJSON }

func (s *netbirdJSON) Probe(ctx context.Context) *types.ProbeResult {
	out, err := run(ctx, s.cfg.Runner, s.cfg.Timeouts.Command, netbirdBinary, "status", "--json")
	if err != nil || len(strings.TrimSpace(string(out))) == 0 {
		s.cfg.Logger.Debug("JSON status unavailable", logger.F("error", err))
		return nil
	}

	connected, ip, err := parseNetbirdJSON(out)
	if err != nil {
		s.cfg.Logger.Debug("Malformed JSON status", logger.F("error", err))
		return nil
	}
	if !connected {
		return nil
	}
	return &types.ProbeResult{Connected: true, OverlayIP: ip, Source: SourceJSON}
}

// parseNetbirdText scans the human-readable status for the management line and overlay IP
func parseNetbirdText(output string) (bool, string) {
	if !strings.Contains(output, "Management: Connected") {
		return false, ""
	}

	for _, line := range strings.Split(output, "\n") {
		if idx := strings.Index(line, "NetBird IP:"); idx >= 0 {
			return true, stripCIDR(line[idx+len("NetBird IP:"):])
		}
	}
	return true, ""
}

type netbirdText struct {
	cfg *Config
}

func (s *netbirdText) Name() string { return SourceText }

func (s *netbirdText) Probe(ctx context.Context) *types.ProbeResult {
	out, err := run(ctx, s.cfg.Runner, s.cfg.Timeouts.Command, netbirdBinary, "status")
	if err != nil {
		s.cfg.Logger.Debug("Text status unavailable", logger.F("error", err))
		return nil
	}

	connected, ip := parseNetbirdText(string(out))
	if !connected {
		return nil
	}
	return &types.ProbeResult{Connected: true, OverlayIP: ip, Source: SourceText}
}
