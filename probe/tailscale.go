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
	"net"
	"strings"

	"github.com/we-are-mono/adsbfeed/logger"
	"github.com/we-are-mono/adsbfeed/types"
)

const tailscaleBinary = "tailscale"

// NewTailscale creates the secondary VPN probe. Membership in the expected tailnet
// is verified through the DNS name; the interface strategy only applies when no
// suffix is configured.
func NewTailscale(cfg Config) *Probe {
	cfg.setDefaults()
	if cfg.Interface == "" {
		cfg.Interface = "tailscale0"
	}
	c := &cfg

	strategies := []Strategy{
		&presence{cfg: c, tool: tailscaleBinary},
		&tailscaleJSON{cfg: c},
		&tailscaleText{cfg: c},
	}
	if cfg.TailnetSuffix == "" {
		strategies = append(strategies, &overlayInterface{cfg: c})
	}
	return New(types.ToolTailscale, cfg.Logger, strategies...)
}

type tailscaleStatus struct {
	BackendState string `json:"BackendState"`
	Self         struct {
		DNSName      string   `json:"DNSName"`
		TailscaleIPs []string `json:"TailscaleIPs"`
	} `json:"Self"`
}

type tailscaleJSON struct {
	cfg *Config
}

func (s *tailscaleJSON) Name() string { return SourceJSON }

// Probe answers definitively once the status document parses
func (s *tailscaleJSON) Probe(ctx context.Context) *types.ProbeResult {
	out, err := run(ctx, s.cfg.Runner, s.cfg.Timeouts.Command, tailscaleBinary, "status", "--json")
	if err != nil {
		s.cfg.Logger.Debug("JSON status unavailable", logger.F("error", err))
		return nil
	}

	var status tailscaleStatus
	if err := json.Unmarshal(out, &status); err != nil {
		s.cfg.Logger.Debug("Malformed JSON status", logger.F("error", err))
		return nil
	}

	if status.BackendState != "Running" {
		return &types.ProbeResult{Source: SourceJSON, Detail: "backend " + strings.ToLower(status.BackendState)}
	}
	if len(status.Self.TailscaleIPs) == 0 {
		return &types.ProbeResult{Source: SourceJSON, Detail: "no tailnet address"}
	}

	dnsName := strings.TrimSuffix(status.Self.DNSName, ".")
	if s.cfg.TailnetSuffix != "" && !strings.HasSuffix(dnsName, s.cfg.TailnetSuffix) {
		s.cfg.Logger.Warn("Connected to a different tailnet, skipping", logger.F("dns_name", dnsName))
		return &types.ProbeResult{Source: SourceJSON, Detail: "different tailnet " + dnsName}
	}

	return &types.ProbeResult{
		Connected: true,
		OverlayIP: status.Self.TailscaleIPs[0],
		Source:    SourceJSON,
		Detail:    dnsName,
	}
}

// firstIP returns the first field of the output that parses as an IP address
func firstIP(output string) string {
	for _, field := range strings.Fields(output) {
		if ip := net.ParseIP(field); ip != nil {
			return ip.String()
		}
	}
	return ""
}

type tailscaleText struct {
	cfg *Config
}

func (s *tailscaleText) Name() string { return SourceText }

func (s *tailscaleText) Probe(ctx context.Context) *types.ProbeResult {
	out, err := run(ctx, s.cfg.Runner, s.cfg.Timeouts.Command, tailscaleBinary, "status")
	if err != nil {
		s.cfg.Logger.Debug("Text status unavailable", logger.F("error", err))
		return nil
	}

	output := string(out)
	if s.cfg.TailnetSuffix == "" || !strings.Contains(output, s.cfg.TailnetSuffix) {
		return nil
	}
	return &types.ProbeResult{Connected: true, OverlayIP: firstIP(output), Source: SourceText}
}
