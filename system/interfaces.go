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

// Package system provides low-level system integration: external commands with
// bounded runtimes, netlink interface inspection and WireGuard device queries.
package system

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"github.com/vishvananda/netlink"
	"golang.zx2c4.com/wireguard/wgctrl"
	"golang.zx2c4.com/wireguard/wgctrl/wgtypes"
)

// NetlinkClient abstracts the netlink queries used for overlay inspection.
type NetlinkClient interface {
	LinkByName(name string) (netlink.Link, error)
	AddrList(link netlink.Link, family int) ([]netlink.Addr, error)
}

// CommandRunner abstracts command execution for testability.
type CommandRunner interface {
	// LookPath reports where an executable is installed
	LookPath(file string) (string, error)
	// Run executes a command and returns its stdout. A non-zero exit is an error.
	// The command is killed when ctx is done.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// WireGuardClient abstracts wgctrl device queries.
type WireGuardClient interface {
	Device(name string) (*wgtypes.Device, error)
	Close() error
}

// DefaultNetlinkClient implements NetlinkClient using real netlink calls.
type DefaultNetlinkClient struct{}

// NewDefaultNetlinkClient creates a new DefaultNetlinkClient.
func NewDefaultNetlinkClient() *DefaultNetlinkClient {
	return &DefaultNetlinkClient{}
}

func (c *DefaultNetlinkClient) LinkByName(name string) (netlink.Link, error) {
	return netlink.LinkByName(name)
}

func (c *DefaultNetlinkClient) AddrList(link netlink.Link, family int) ([]netlink.Addr, error) {
	return netlink.AddrList(link, family)
}

// DefaultCommandRunner implements CommandRunner using os/exec.
type DefaultCommandRunner struct{}

// NewDefaultCommandRunner creates a new DefaultCommandRunner.
func NewDefaultCommandRunner() *DefaultCommandRunner {
	return &DefaultCommandRunner{}
}

func (c *DefaultCommandRunner) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (c *DefaultCommandRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return stdout.Bytes(), fmt.Errorf("%s timed out: %w", name, ctx.Err())
		}
		return stdout.Bytes(), fmt.Errorf("%s failed: %w (%s)", name, err, bytes.TrimSpace(stderr.Bytes()))
	}
	return stdout.Bytes(), nil
}

// DefaultWireGuardClient implements WireGuardClient with wgctrl.
// The underlying handle is opened on first use.
type DefaultWireGuardClient struct {
	client *wgctrl.Client
}

// NewDefaultWireGuardClient creates a new DefaultWireGuardClient.
func NewDefaultWireGuardClient() *DefaultWireGuardClient {
	return &DefaultWireGuardClient{}
}

func (c *DefaultWireGuardClient) Device(name string) (*wgtypes.Device, error) {
	if c.client == nil {
		client, err := wgctrl.New()
		if err != nil {
			return nil, fmt.Errorf("failed to open wireguard control: %w", err)
		}
		c.client = client
	}
	return c.client.Device(name)
}

func (c *DefaultWireGuardClient) Close() error {
	if c.client == nil {
		return nil
	}
	err := c.client.Close()
	c.client = nil
	return err
}
