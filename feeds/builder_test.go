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

package feeds

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/we-are-mono/adsbfeed/logger"
	"github.com/we-are-mono/adsbfeed/state"
	"github.com/we-are-mono/adsbfeed/types"
	"github.com/we-are-mono/adsbfeed/uplink"
)

type staticSelector struct {
	host   string
	reason string
	calls  int
}

func (s *staticSelector) Select(ctx context.Context, cfg types.PriorityUplink) (string, string) {
	s.calls++
	return s.host, s.reason
}

type connectedProber struct{ connected bool }

func (p connectedProber) Check(ctx context.Context) types.ProbeResult {
	return types.ProbeResult{Tool: types.ToolNetbird, Connected: p.connected}
}

func settings(content string) *state.Settings {
	return state.ParseSettings("", []byte(content))
}

func build(t *testing.T, content string, sel HostSelector, outputs []types.Output) Result {
	t.Helper()
	return NewBuilder(sel, DefaultAggregators(), nil).Build(context.Background(), settings(content), outputs)
}

// TestBuildPriorityOnly tests the end-to-end case with a connected VPN
func TestBuildPriorityOnly(t *testing.T) {
	content := "TAKNET_PS_ENABLED=true\n" +
		"TAKNET_PS_SERVER_HOST_VPN=vpn.example.com\n" +
		"TAKNET_PS_SERVER_HOST_FALLBACK=fb.example.com\n" +
		"TAKNET_PS_CONNECTION_MODE=auto\n" +
		"TAKNET_PS_SERVER_PORT=30004\n" +
		"TAKNET_PS_MLAT_ENABLED=true\n" +
		"TAKNET_PS_MLAT_PORT=30105\n"

	res := build(t, content, uplink.NewSelector(connectedProber{connected: true}, nil), nil)

	assert.Equal(t, "adsb,vpn.example.com,30004,beast_reduce_plus_out;mlat,vpn.example.com,30105,39001", res.Config)
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, "vpn.example.com", res.Host)
	assert.Equal(t, uplink.ReasonNetbirdActive, res.Reason)
}

// TestBuildOrdering tests that the priority feed leads and aggregators keep declaration order
func TestBuildOrdering(t *testing.T) {
	content := "AIRPLANESLIVE_ENABLED=true\n" +
		"ADSBX_ENABLED=true\n" +
		"ADSBLOL_ENABLED=true\n" +
		"ADSBFI_ENABLED=true\n" +
		"FEEDER_UUID=1234-abcd\n" +
		"DUMP978_ENABLED=true\n"

	res := build(t, content, &staticSelector{host: "adsb.tak-solutions.com", reason: uplink.ReasonVPNInactive}, nil)

	expected := []string{
		"adsb,adsb.tak-solutions.com,30004,beast_reduce_plus_out",
		"mlat,adsb.tak-solutions.com,30105,39001",
		"adsb,feed.adsb.fi,30004,beast_reduce_plus_out",
		"mlat,feed.adsb.fi,31090,39003",
		"adsb,feed.adsb.lol,30004,beast_reduce_plus_out",
		"mlat,in.adsb.lol,31090,39001",
		"adsb,feed1.adsbexchange.com,30004,beast_reduce_plus_out,uuid=1234-abcd",
		"mlat,feed.adsbexchange.com,31090,39004,uuid=1234-abcd",
		"adsb,feed.airplanes.live,30004,beast_reduce_plus_out",
		"mlat,feed.airplanes.live,31090,39002",
		"uat_in,dump978,30978,uat_in",
	}
	assert.Equal(t, strings.Join(expected, ";"), res.Config)
	assert.Equal(t, len(expected), res.Count)
}

// TestBuildCredentialGating tests that no connector is emitted without its credential
func TestBuildCredentialGating(t *testing.T) {
	emitter := logger.NewEmitter()
	collector := &logger.WarningCollector{}
	emitter.Subscribe(collector)
	log := logger.New(logger.Config{Level: "info"}, nil, emitter)

	content := "TAKNET_PS_ENABLED=false\nADSBLOL_ENABLED=true\nADSBX_ENABLED=true\nFEEDER_UUID=  \nFR24_ENABLED=true\nADSBFI_ENABLED=true\n"
	res := NewBuilder(&staticSelector{}, DefaultAggregators(), log).Build(context.Background(), settings(content), nil)

	assert.Equal(t, "adsb,feed.adsb.fi,30004,beast_reduce_plus_out;mlat,feed.adsb.fi,31090,39003", res.Config)
	assert.NotContains(t, res.Config, "uuid=")
	// adsb.lol, ADSBexchange, FlightRadar24 and the disabled priority feed
	assert.Equal(t, 4, collector.Count())
}

// TestBuildPriorityDisabled tests that a disabled priority feed skips host selection
func TestBuildPriorityDisabled(t *testing.T) {
	sel := &staticSelector{host: "vpn.example.com"}
	res := build(t, "TAKNET_PS_ENABLED=false\nAIRPLANESLIVE_ENABLED=true\n", sel, nil)

	assert.Equal(t, 0, sel.calls)
	assert.Equal(t, uplink.ReasonDisabled, res.Reason)
	require.Equal(t, 2, res.Count)
	assert.Equal(t, "Airplanes.Live", res.Entries[0].Aggregator)
}

// TestBuildNoHost tests the configuration-gap case
func TestBuildNoHost(t *testing.T) {
	res := build(t, "", &staticSelector{reason: uplink.ReasonDisabled}, nil)

	assert.Equal(t, "", res.Config)
	assert.Equal(t, 0, res.Count)
}

// TestBuildMLATDisabled tests the beast-only priority feed
func TestBuildMLATDisabled(t *testing.T) {
	res := build(t, "TAKNET_PS_MLAT_ENABLED=false\nTAKNET_PS_SERVER_PORT=31004\n", &staticSelector{host: "vpn.example.com", reason: uplink.ReasonVPNForced}, nil)
	assert.Equal(t, "adsb,vpn.example.com,31004,beast_reduce_plus_out", res.Config)
}

// TestBuildCustomOutputs tests user-defined outputs from outputs.json
func TestBuildCustomOutputs(t *testing.T) {
	outputs := []types.Output{
		{ID: "1", Name: "club", Host: "10.0.0.5", Port: 30005, Enabled: true},
		{ID: "2", Host: "backup.example.com", Port: 30105, Enabled: false},
		{ID: "3", Host: "vpn.tak-solutions.com", Port: 30004, Enabled: true, Primary: true},
		{ID: "4", Host: "reduce.example.com", Port: 30006, Enabled: true, Type: "beast_reduce_out"},
	}

	res := build(t, "DUMP978_ENABLED=true\nTAKNET_PS_MLAT_ENABLED=false\n", &staticSelector{host: "adsb.tak-solutions.com"}, outputs)

	assert.Equal(t, "adsb,adsb.tak-solutions.com,30004,beast_reduce_plus_out;"+
		"adsb,10.0.0.5,30005,beast_out;"+
		"adsb,reduce.example.com,30006,beast_reduce_out;"+
		"uat_in,dump978,30978,uat_in", res.Config)
	assert.Equal(t, "club", res.Entries[1].Aggregator)
	assert.Equal(t, "4", res.Entries[2].Aggregator)
}

// TestBuildDeterministic tests that repeated builds agree
func TestBuildDeterministic(t *testing.T) {
	content := "ADSBFI_ENABLED=true\nADSBX_ENABLED=true\nFEEDER_UUID=u\n"
	sel := &staticSelector{host: "h"}

	first := build(t, content, sel, nil)
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, build(t, content, sel, nil))
	}
}

// TestAggregatorFeedsNotShared tests that credential params never leak into the defaults
func TestAggregatorFeedsNotShared(t *testing.T) {
	aggs := DefaultAggregators()
	b := NewBuilder(&staticSelector{}, aggs, nil)
	b.Build(context.Background(), settings("ADSBX_ENABLED=true\nFEEDER_UUID=first\n"), nil)

	res := b.Build(context.Background(), settings("ADSBX_ENABLED=true\nFEEDER_UUID=second\n"), nil)
	assert.Equal(t, "adsb,feed1.adsbexchange.com,30004,beast_reduce_plus_out,uuid=second;mlat,feed.adsbexchange.com,31090,39004,uuid=second", res.Config)
	assert.Empty(t, aggs[3].Feeds[0].ExtraParams)
}
