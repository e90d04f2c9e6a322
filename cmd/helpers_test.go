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

package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/we-are-mono/adsbfeed/engine"
	"github.com/we-are-mono/adsbfeed/logger"
	"github.com/we-are-mono/adsbfeed/probe"
	"github.com/we-are-mono/adsbfeed/system"
	"github.com/we-are-mono/adsbfeed/types"
)

const completeSettings = "FEEDER_LAT=39.5\n" +
	"FEEDER_LONG=-104.8\n" +
	"TAKNET_PS_ENABLED=true\n" +
	"TAKNET_PS_SERVER_HOST_VPN=vpn.example.com\n" +
	"TAKNET_PS_SERVER_HOST_FALLBACK=fb.example.com\n" +
	"TAKNET_PS_SERVER_PORT=30004\n" +
	"TAKNET_PS_CONNECTION_MODE=auto\n" +
	"TAKNET_PS_MLAT_ENABLED=true\n" +
	"TAKNET_PS_MLAT_PORT=30105\n" +
	"SDR_1090_DRIVER=rtlsdr\n" +
	"SDR_1090_DEVICE=0\n" +
	"SDR_1090_GAIN=autogain\n" +
	"USE_SOAPYSDR=auto\n"

const netbirdConnected = `{"managementState":{"connected":true},"netbirdIp":"100.92.1.1/16"}`

// testEnv is a config directory plus mocked system clients
type testEnv struct {
	dir     string
	runner  *system.MockCommandRunner
	netlink *system.MockNetlinkClient
	feeder  *types.FeederConfig
}

func newTestEnv(t *testing.T, settings string) *testEnv {
	t.Helper()

	dir := t.TempDir()
	if settings != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(settings), 0600))
	}

	return &testEnv{
		dir:     dir,
		runner:  system.NewMockCommandRunner(),
		netlink: system.NewMockNetlinkClient(),
		feeder: &types.FeederConfig{
			Probes:  &types.ProbeConfig{NetbirdInterface: "wt0", TailscaleInterface: "tailscale0"},
			History: &types.HistoryConfig{Enabled: true, Path: filepath.Join(dir, "history.db")},
			Metrics: &types.MetricsConfig{},
		},
	}
}

func (te *testEnv) path(name string) string {
	return filepath.Join(te.dir, name)
}

func (te *testEnv) engine(dry bool) *engine.Engine {
	return engine.New(engine.Options{
		Runner:       te.runner,
		Interfaces:   system.NewInspector(te.netlink, nil),
		Logger:       logger.NewNop(),
		Warnings:     &logger.WarningCollector{},
		Feeder:       te.feeder,
		SettingsPath: te.path(".env"),
		ComposePath:  te.path("docker-compose.yml"),
		OutputsPath:  te.path("outputs.json"),
		Timeouts:     probe.Timeouts{LookPath: 50 * time.Millisecond, Command: 50 * time.Millisecond, Interface: 50 * time.Millisecond},
		DryRun:       dry,
	})
}

func (te *testEnv) read(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(te.path(name))
	require.NoError(t, err)
	return string(data)
}

// syncBuffer is a bytes.Buffer safe for one writer goroutine and a polling reader
type syncBuffer struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
