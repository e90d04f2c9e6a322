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

// Package types defines the core data structures for adsbfeed.
// It includes the priority uplink, radio, probe and feed types shared by the
// repair, selection, resolution and assembly stages.
package types

import (
	"strconv"
	"strings"
)

// ConnectionMode selects how the priority uplink host is chosen
type ConnectionMode string

const (
	ModeAuto     ConnectionMode = "auto"
	ModeVPN      ConnectionMode = "vpn"
	ModeFallback ConnectionMode = "fallback"
)

// PriorityUplink represents the TAKNET-PS priority feed configuration
type PriorityUplink struct {
	VPNHost      string         `json:"vpn_host"`
	FallbackHost string         `json:"fallback_host"`
	Mode         ConnectionMode `json:"mode"`
	Port         int            `json:"port"`
	MLATPort     int            `json:"mlat_port"`
	Enabled      bool           `json:"enabled"`
	MLATEnabled  bool           `json:"mlat_enabled"`
}

// ProbeTool identifies a VPN client
type ProbeTool string

const (
	ToolNetbird   ProbeTool = "netbird"
	ToolTailscale ProbeTool = "tailscale"
)

// ProbeResult is the outcome of a single connectivity probe. Never persisted.
type ProbeResult struct {
	Tool      ProbeTool `json:"tool"`
	OverlayIP string    `json:"overlay_ip,omitempty"`
	Source    string    `json:"source,omitempty"` // json, text or interface
	Detail    string    `json:"detail,omitempty"`
	Connected bool      `json:"connected"`
}

// DriverMode selects between the hardware-native driver and SoapySDR
type DriverMode string

const (
	DriverAuto        DriverMode = "auto"
	DriverNative      DriverMode = "native"
	DriverAbstraction DriverMode = "abstraction"
)

// ParseDriverMode maps the USE_SOAPYSDR setting to a DriverMode.
// "false" forces native drivers and "true" forces SoapySDR; anything else is auto.
func ParseDriverMode(s string) DriverMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "false", "native":
		return DriverNative
	case "true", "soapysdr", "soapy", "abstraction":
		return DriverAbstraction
	default:
		return DriverAuto
	}
}

// RadioConfig represents one physical radio
type RadioConfig struct {
	Driver        string     `json:"driver"`
	Serial        string     `json:"serial,omitempty"`
	DeviceIndex   string     `json:"device_index"`
	RequestedGain string     `json:"requested_gain"`
	Mode          DriverMode `json:"mode"`
}

// FeedProtocol is the connector protocol of a feed entry
type FeedProtocol string

const (
	ProtocolBeast FeedProtocol = "beast"
	ProtocolMLAT  FeedProtocol = "mlat"
	ProtocolUAT   FeedProtocol = "uat"
)

// connectorPrefix maps a protocol to the ultrafeeder connector keyword
var connectorPrefix = map[FeedProtocol]string{
	ProtocolBeast: "adsb",
	ProtocolMLAT:  "mlat",
	ProtocolUAT:   "uat_in",
}

// Param is a single key=value connector parameter
type Param struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// FeedEntry represents one connector in ULTRAFEEDER_CONFIG
type FeedEntry struct {
	Aggregator  string       `json:"aggregator"`
	Protocol    FeedProtocol `json:"protocol"`
	Host        string       `json:"host"`
	Variant     string       `json:"variant"`
	ExtraParams []Param      `json:"extra_params,omitempty"`
	Port        int          `json:"port"`
}

// String renders the entry as protocol,host,port,variant[,key=value...]
func (e FeedEntry) String() string {
	prefix, ok := connectorPrefix[e.Protocol]
	if !ok {
		prefix = string(e.Protocol)
	}

	parts := []string{prefix, e.Host, strconv.Itoa(e.Port), e.Variant}
	for _, p := range e.ExtraParams {
		parts = append(parts, p.Key+"="+p.Value)
	}
	return strings.Join(parts, ",")
}

// JoinFeeds renders entries as a single ';'-delimited ULTRAFEEDER_CONFIG value.
func JoinFeeds(entries []FeedEntry) string {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, e.String())
	}
	return strings.Join(parts, ";")
}

// OutputsDocument represents outputs.json, maintained by the web configuration page
type OutputsDocument struct {
	FeederInfo map[string]interface{} `json:"feeder_info,omitempty"`
	Version    string                 `json:"version"`
	Outputs    []Output               `json:"outputs"`
}

// Output is a user-added Beast output
type Output struct {
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	Type    string `json:"type" validate:"omitempty,oneof=beast beast_out beast_reduce_out beast_reduce_plus_out"`
	Host    string `json:"host" validate:"required,hostname_rfc1123|ip"`
	Port    int    `json:"port" validate:"required,min=1,max=65535"`
	Enabled bool   `json:"enabled"`
	Primary bool   `json:"primary,omitempty"`
}
