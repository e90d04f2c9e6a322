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
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.zx2c4.com/wireguard/wgctrl/wgtypes"
)

// TestInterfaceIPv4 tests address lookup through the netlink client
func TestInterfaceIPv4(t *testing.T) {
	mockNetlink := NewMockNetlinkClient()
	mockNetlink.AddLink("wt0", true, "100.92.10.4/16")
	mockNetlink.AddLink("empty0", true)

	inspector := NewInspector(mockNetlink, nil)

	ip, err := inspector.InterfaceIPv4(context.Background(), "wt0")
	require.NoError(t, err)
	assert.Equal(t, "100.92.10.4", ip)

	_, err = inspector.InterfaceIPv4(context.Background(), "missing0")
	assert.Error(t, err)

	_, err = inspector.InterfaceIPv4(context.Background(), "empty0")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no IPv4 address")
}

// TestInterfaceIPv4AddrListError tests error propagation from netlink
func TestInterfaceIPv4AddrListError(t *testing.T) {
	mockNetlink := NewMockNetlinkClient()
	mockNetlink.AddLink("wt0", true, "100.92.10.4/16")
	mockNetlink.AddrListError = errors.New("permission denied")

	_, err := NewInspector(mockNetlink, nil).InterfaceIPv4(context.Background(), "wt0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
}

// TestOverlayMissing tests that a missing interface is not an error
func TestOverlayMissing(t *testing.T) {
	status := NewInspector(NewMockNetlinkClient(), NewMockWireGuardClient()).Overlay("wt0")
	assert.Equal(t, "missing", status.State)
	assert.False(t, status.WireGuard)
}

// TestOverlayWireGuardPeers tests peer counting and latest handshake
func TestOverlayWireGuardPeers(t *testing.T) {
	mockNetlink := NewMockNetlinkClient()
	mockNetlink.AddLink("wt0", true, "100.92.10.4/16")

	older := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	newer := older.Add(5 * time.Minute)
	mockWG := NewMockWireGuardClient()
	mockWG.Devices["wt0"] = &wgtypes.Device{
		Name: "wt0",
		Peers: []wgtypes.Peer{
			{LastHandshakeTime: older},
			{LastHandshakeTime: newer},
		},
	}

	inspector := NewInspector(mockNetlink, mockWG)
	status := inspector.Overlay("wt0")

	assert.Equal(t, "up", status.State)
	assert.Equal(t, []string{"100.92.10.4/16"}, status.IPAddr)
	assert.True(t, status.WireGuard)
	assert.Equal(t, 2, status.Peers)
	assert.Equal(t, newer, status.LastHandshake)

	require.NoError(t, inspector.Close())
	assert.True(t, mockWG.Closed)
}

// TestDefaultCommandRunnerTimeout tests that a hung command is killed
func TestDefaultCommandRunnerTimeout(t *testing.T) {
	runner := NewDefaultCommandRunner()
	if _, err := runner.LookPath("sleep"); err != nil {
		t.Skip("sleep not available")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := runner.Run(ctx, "sleep", "5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
	assert.Less(t, time.Since(start), 3*time.Second)
}

// TestDefaultCommandRunnerExitCode tests that non-zero exits are errors
func TestDefaultCommandRunnerExitCode(t *testing.T) {
	runner := NewDefaultCommandRunner()
	if _, err := runner.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	out, err := runner.Run(context.Background(), "sh", "-c", "echo hello")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(out))

	_, err = runner.Run(context.Background(), "sh", "-c", "exit 3")
	assert.Error(t, err)
}

// TestMockCommandRunnerBlock tests the hung-tool simulation
func TestMockCommandRunnerBlock(t *testing.T) {
	runner := NewMockCommandRunner()
	runner.On("netbird status --json", CommandResult{Block: true})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := runner.Run(ctx, "netbird", "status", "--json")
	assert.Error(t, err)
	assert.Equal(t, 1, runner.CallCount("netbird status --json"))

	_, err = runner.LookPath("netbird")
	assert.NoError(t, err)
	_, err = runner.LookPath("tailscale")
	assert.Error(t, err)
}

// TestFormatDuration tests duration rendering
func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "5m", FormatDuration(5*time.Minute))
	assert.Equal(t, "2h 3m", FormatDuration(2*time.Hour+3*time.Minute))
	assert.Equal(t, "1d 1h 0m", FormatDuration(25*time.Hour))
}

// TestGetHostInfo tests that host information is populated
func TestGetHostInfo(t *testing.T) {
	info := GetHostInfo()
	assert.NotEmpty(t, info.KernelVersion)
}
