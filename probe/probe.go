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

// Package probe detects whether the feeder is attached to an overlay VPN.
//
// Each probe is an ordered chain of strategies. The first strategy that returns a
// result decides; an exhausted chain means "not connected". Probes never return
// errors: missing tools, timeouts, non-zero exits and malformed output all degrade
// to the next strategy or to a not-connected result.
package probe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/we-are-mono/adsbfeed/logger"
	"github.com/we-are-mono/adsbfeed/system"
	"github.com/we-are-mono/adsbfeed/types"
)

// Result sources
const (
	SourcePresence  = "presence"
	SourceJSON      = "json"
	SourceText      = "text"
	SourceInterface = "interface"
)

// Strategy is one way of asking a VPN client for its state.
// A nil result means "no answer, try the next strategy".
type Strategy interface {
	Name() string
	Probe(ctx context.Context) *types.ProbeResult
}

// InterfaceLookup returns the first IPv4 address configured on an interface
type InterfaceLookup interface {
	InterfaceIPv4(ctx context.Context, name string) (string, error)
}

// Timeouts bounds each kind of external call
type Timeouts struct {
	LookPath  time.Duration
	Command   time.Duration
	Interface time.Duration
}

// DefaultTimeouts returns the budgets used in production
func DefaultTimeouts() Timeouts {
	return Timeouts{
		LookPath:  2 * time.Second,
		Command:   5 * time.Second,
		Interface: 3 * time.Second,
	}
}

// Config wires a probe to the host
type Config struct {
	Runner        system.CommandRunner
	Interfaces    InterfaceLookup
	Logger        logger.Logger
	Timeouts      Timeouts
	Interface     string // overlay interface name
	TailnetSuffix string // Tailscale only
}

func (c *Config) setDefaults() {
	if c.Logger == nil {
		c.Logger = logger.NewNop()
	}
	if c.Timeouts.LookPath == 0 {
		c.Timeouts.LookPath = DefaultTimeouts().LookPath
	}
	if c.Timeouts.Command == 0 {
		c.Timeouts.Command = DefaultTimeouts().Command
	}
	if c.Timeouts.Interface == 0 {
		c.Timeouts.Interface = DefaultTimeouts().Interface
	}
}

// Probe runs a chain of strategies for one VPN client
type Probe struct {
	log        logger.Logger
	tool       types.ProbeTool
	strategies []Strategy
}

// New creates a probe from an explicit strategy chain
func New(tool types.ProbeTool, log logger.Logger, strategies ...Strategy) *Probe {
	if log == nil {
		log = logger.NewNop()
	}
	return &Probe{
		tool:       tool,
		log:        log.With(logger.F("component", "probe"), logger.F("tool", string(tool))),
		strategies: strategies,
	}
}

// Tool returns the VPN client this probe inspects
func (p *Probe) Tool() types.ProbeTool {
	return p.tool
}

// Check walks the strategy chain and returns the first answer
func (p *Probe) Check(ctx context.Context) types.ProbeResult {
	for _, s := range p.strategies {
		if ctx.Err() != nil {
			break
		}
		r := s.Probe(ctx)
		if r == nil {
			p.log.Debug("Strategy gave no answer", logger.F("strategy", s.Name()))
			continue
		}
		r.Tool = p.tool
		if r.Connected {
			ip := r.OverlayIP
			if ip == "" {
				ip = "IP unknown"
			}
			p.log.Info("Connected", logger.F("ip", ip), logger.F("source", r.Source))
		} else {
			p.log.Info("Not connected", logger.F("source", r.Source), logger.F("detail", r.Detail))
		}
		return *r
	}

	p.log.Info("Not connected")
	return types.ProbeResult{Tool: p.tool, Detail: "no strategy answered"}
}

// Detect returns the first connected result in priority order.
// The second return value is false when no probe is connected.
func Detect(ctx context.Context, probes ...*Probe) (types.ProbeResult, bool) {
	for _, p := range probes {
		if r := p.Check(ctx); r.Connected {
			return r, true
		}
	}
	return types.ProbeResult{}, false
}

// lookPath checks tool presence within the budget. LookPath itself cannot be
// cancelled, so the result is abandoned when the budget runs out.
func lookPath(ctx context.Context, runner system.CommandRunner, budget time.Duration, tool string) error {
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := runner.LookPath(tool)
		done <- err
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("looking up %s: %w", tool, ctx.Err())
	}
}

// run executes a command within the budget
func run(ctx context.Context, runner system.CommandRunner, budget time.Duration, name string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()
	return runner.Run(ctx, name, args...)
}

// stripCIDR drops a /prefix suffix from an address
func stripCIDR(addr string) string {
	addr = strings.TrimSpace(addr)
	if i := strings.IndexByte(addr, '/'); i >= 0 {
		return addr[:i]
	}
	return addr
}

// presence answers "not connected" when the tool is not installed
type presence struct {
	cfg  *Config
	tool string
}

func (s *presence) Name() string { return SourcePresence }

func (s *presence) Probe(ctx context.Context) *types.ProbeResult {
	if err := lookPath(ctx, s.cfg.Runner, s.cfg.Timeouts.LookPath, s.tool); err != nil {
		return &types.ProbeResult{Source: SourcePresence, Detail: "not installed"}
	}
	return nil
}

// overlayInterface answers "connected" when the overlay interface carries an IPv4 address
type overlayInterface struct {
	cfg *Config
}

func (s *overlayInterface) Name() string { return SourceInterface }

func (s *overlayInterface) Probe(ctx context.Context) *types.ProbeResult {
	if s.cfg.Interfaces == nil || s.cfg.Interface == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeouts.Interface)
	defer cancel()

	ip, err := s.cfg.Interfaces.InterfaceIPv4(ctx, s.cfg.Interface)
	if err != nil {
		s.cfg.Logger.Debug("Interface check failed", logger.F("interface", s.cfg.Interface), logger.F("error", err))
		return nil
	}
	return &types.ProbeResult{
		Connected: true,
		OverlayIP: ip,
		Source:    SourceInterface,
		Detail:    "address on " + s.cfg.Interface,
	}
}
