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
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// OverlayStatus describes a VPN overlay interface
type OverlayStatus struct {
	LastHandshake time.Time `json:"last_handshake,omitempty"`
	Name          string    `json:"name"`
	State         string    `json:"state"` // up, down, missing
	IPAddr        []string  `json:"ipaddr,omitempty"`
	MTU           int       `json:"mtu,omitempty"`
	Peers         int       `json:"peers"`
	RXBytes       uint64    `json:"rx_bytes"`
	TXBytes       uint64    `json:"tx_bytes"`
	WireGuard     bool      `json:"wireguard"`
}

// HostInfo holds general host information
type HostInfo struct {
	Hostname      string `json:"hostname"`
	KernelVersion string `json:"kernel_version"`
	Machine       string `json:"machine"`
}

// Inspector queries overlay interfaces through netlink and wgctrl
type Inspector struct {
	netlink NetlinkClient
	wg      WireGuardClient
}

// NewInspector creates an Inspector with the given clients. wg may be nil.
func NewInspector(nl NetlinkClient, wg WireGuardClient) *Inspector {
	return &Inspector{netlink: nl, wg: wg}
}

// NewDefaultInspector creates an Inspector with real system clients.
func NewDefaultInspector() *Inspector {
	return &Inspector{
		netlink: NewDefaultNetlinkClient(),
		wg:      NewDefaultWireGuardClient(),
	}
}

// Close releases the WireGuard handle, if any.
func (i *Inspector) Close() error {
	if i.wg == nil {
		return nil
	}
	return i.wg.Close()
}

// InterfaceIPv4 returns the first IPv4 address assigned to name, bounded by ctx.
func (i *Inspector) InterfaceIPv4(ctx context.Context, name string) (string, error) {
	type result struct {
		err error
		ip  string
	}
	done := make(chan result, 1)

	go func() {
		link, err := i.netlink.LinkByName(name)
		if err != nil {
			done <- result{err: fmt.Errorf("interface %s not found: %w", name, err)}
			return
		}
		addrs, err := i.netlink.AddrList(link, unix.AF_INET)
		if err != nil {
			done <- result{err: fmt.Errorf("failed to list addresses on %s: %w", name, err)}
			return
		}
		for _, addr := range addrs {
			if addr.IPNet != nil && addr.IP.To4() != nil {
				done <- result{ip: addr.IP.String()}
				return
			}
		}
		done <- result{err: fmt.Errorf("no IPv4 address on %s", name)}
	}()

	select {
	case r := <-done:
		return r.ip, r.err
	case <-ctx.Done():
		return "", fmt.Errorf("inspecting %s: %w", name, ctx.Err())
	}
}

// Overlay reports link state, addresses and WireGuard peers for name.
// A missing interface is reported as state "missing", not as an error.
func (i *Inspector) Overlay(name string) OverlayStatus {
	status := OverlayStatus{Name: name, State: "missing"}

	link, err := i.netlink.LinkByName(name)
	if err != nil {
		return status
	}

	attrs := link.Attrs()
	status.MTU = attrs.MTU
	if attrs.Flags&net.FlagUp != 0 {
		status.State = "up"
	} else {
		status.State = "down"
	}
	if attrs.Statistics != nil {
		status.RXBytes = attrs.Statistics.RxBytes
		status.TXBytes = attrs.Statistics.TxBytes
	}

	if addrs, err := i.netlink.AddrList(link, unix.AF_INET); err == nil {
		for _, addr := range addrs {
			if addr.IPNet != nil {
				status.IPAddr = append(status.IPAddr, addr.IPNet.String())
			}
		}
	}

	if i.wg != nil {
		if dev, err := i.wg.Device(name); err == nil {
			status.WireGuard = true
			status.Peers = len(dev.Peers)
			for _, peer := range dev.Peers {
				if peer.LastHandshakeTime.After(status.LastHandshake) {
					status.LastHandshake = peer.LastHandshakeTime
				}
			}
		}
	}

	return status
}

// GetHostInfo gathers hostname and kernel details
func GetHostInfo() HostInfo {
	info := HostInfo{}

	if hostname, err := os.Hostname(); err == nil {
		info.Hostname = hostname
	}

	var uts unix.Utsname
	if err := unix.Uname(&uts); err == nil {
		info.KernelVersion = strings.TrimRight(string(uts.Release[:]), "\x00")
		info.Machine = strings.TrimRight(string(uts.Machine[:]), "\x00")
	}

	return info
}

// FormatDuration renders d as "1d 2h 3m", "2h 3m" or "3m"
func FormatDuration(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
