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

package system

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/vishvananda/netlink"
	"golang.zx2c4.com/wireguard/wgctrl/wgtypes"
)

// MockNetlinkClient is a mock implementation of NetlinkClient for testing.
type MockNetlinkClient struct {
	Links     map[string]netlink.Link
	Addresses map[string][]netlink.Addr

	LinkByNameError error
	AddrListError   error

	LinkByNameCalls int
	AddrListCalls   int

	mu sync.Mutex
}

// NewMockNetlinkClient creates a new MockNetlinkClient.
func NewMockNetlinkClient() *MockNetlinkClient {
	return &MockNetlinkClient{
		Links:     make(map[string]netlink.Link),
		Addresses: make(map[string][]netlink.Addr),
	}
}

// AddLink registers a dummy link with the given IPv4 CIDRs.
func (m *MockNetlinkClient) AddLink(name string, up bool, cidrs ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	attrs := netlink.NewLinkAttrs()
	attrs.Name = name
	attrs.Index = len(m.Links) + 1
	attrs.MTU = 1280
	if up {
		attrs.Flags |= net.FlagUp
	}
	m.Links[name] = &netlink.Dummy{LinkAttrs: attrs}

	for _, cidr := range cidrs {
		addr, err := netlink.ParseAddr(cidr)
		if err != nil {
			panic(fmt.Sprintf("bad cidr %q: %v", cidr, err))
		}
		m.Addresses[name] = append(m.Addresses[name], *addr)
	}
}

func (m *MockNetlinkClient) LinkByName(name string) (netlink.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LinkByNameCalls++

	if m.LinkByNameError != nil {
		return nil, m.LinkByNameError
	}

	link, ok := m.Links[name]
	if !ok {
		return nil, fmt.Errorf("Link not found")
	}
	return link, nil
}

func (m *MockNetlinkClient) AddrList(link netlink.Link, family int) ([]netlink.Addr, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AddrListCalls++

	if m.AddrListError != nil {
		return nil, m.AddrListError
	}
	return m.Addresses[link.Attrs().Name], nil
}

// CommandResult is a canned response for MockCommandRunner.
type CommandResult struct {
	Err    error
	Output string
	// Block makes Run wait for the context to expire, simulating a hung tool.
	Block bool
}

// MockCommandRunner is a mock implementation of CommandRunner for testing.
// Responses are keyed by the full command line, e.g. "netbird status --json".
type MockCommandRunner struct {
	Installed map[string]bool
	Responses map[string]CommandResult
	Calls     []string

	mu sync.Mutex
}

// NewMockCommandRunner creates a new MockCommandRunner.
func NewMockCommandRunner() *MockCommandRunner {
	return &MockCommandRunner{
		Installed: make(map[string]bool),
		Responses: make(map[string]CommandResult),
	}
}

// On registers a response and marks the binary as installed.
func (m *MockCommandRunner) On(cmdline string, result CommandResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Responses[cmdline] = result
	m.Installed[strings.Fields(cmdline)[0]] = true
}

func (m *MockCommandRunner) LookPath(file string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Installed[file] {
		return "/usr/bin/" + file, nil
	}
	return "", fmt.Errorf("exec: %q: executable file not found in $PATH", file)
}

func (m *MockCommandRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmdline := strings.Join(append([]string{name}, args...), " ")

	m.mu.Lock()
	m.Calls = append(m.Calls, cmdline)
	result, ok := m.Responses[cmdline]
	m.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%s failed: exit status 127", name)
	}

	if result.Block {
		<-ctx.Done()
		return nil, fmt.Errorf("%s timed out: %w", name, ctx.Err())
	}

	return []byte(result.Output), result.Err
}

// CallCount returns how many times cmdline was run.
func (m *MockCommandRunner) CallCount(cmdline string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, c := range m.Calls {
		if c == cmdline {
			count++
		}
	}
	return count
}

// MockWireGuardClient is a mock implementation of WireGuardClient for testing.
type MockWireGuardClient struct {
	Devices     map[string]*wgtypes.Device
	DeviceError error
	Closed      bool
}

// NewMockWireGuardClient creates a new MockWireGuardClient.
func NewMockWireGuardClient() *MockWireGuardClient {
	return &MockWireGuardClient{Devices: make(map[string]*wgtypes.Device)}
}

func (m *MockWireGuardClient) Device(name string) (*wgtypes.Device, error) {
	if m.DeviceError != nil {
		return nil, m.DeviceError
	}
	dev, ok := m.Devices[name]
	if !ok {
		return nil, fmt.Errorf("device %s not found", name)
	}
	return dev, nil
}

func (m *MockWireGuardClient) Close() error {
	m.Closed = true
	return nil
}
