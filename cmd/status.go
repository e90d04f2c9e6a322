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
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/we-are-mono/adsbfeed/probe"
	"github.com/we-are-mono/adsbfeed/system"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show host, VPN and overlay interface status",
	Long:  `Displays host details, both VPN probe results and the state of the overlay interfaces, including WireGuard peers.`,
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	withRuntime(cmd, func(rt *runtime) error {
		inspector := system.NewDefaultInspector()
		defer inspector.Close()

		netbird, tailscale := rt.engine().Probes()
		overlays := []string{rt.feeder.Probes.NetbirdInterface, rt.feeder.Probes.TailscaleInterface}
		return executeStatus(cmd.Context(), cmd.OutOrStdout(), system.GetHostInfo(), inspector, overlays, netbird, tailscale)
	})
}

// executeStatus prints host details, probe results and overlay interfaces.
func executeStatus(ctx context.Context, w io.Writer, host system.HostInfo, inspector *system.Inspector, overlays []string, probes ...*probe.Probe) error {
	if ctx == nil {
		ctx = context.Background()
	}

	fmt.Fprintln(w, "adsbfeed Feeder Status")
	fmt.Fprintln(w, "======================")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Hostname:  %s\n", orNone(host.Hostname))
	fmt.Fprintf(w, "  Kernel:    %s (%s)\n", orNone(host.KernelVersion), orNone(host.Machine))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "VPN")
	fmt.Fprintln(w, "---")
	for _, p := range probes {
		printProbeResult(w, p.Check(ctx))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "OVERLAY INTERFACES")
	fmt.Fprintln(w, "------------------")
	for _, name := range overlays {
		printOverlay(w, inspector.Overlay(name))
	}
	return nil
}

func printOverlay(w io.Writer, s system.OverlayStatus) {
	label := "[" + strings.ToUpper(s.State) + "]"
	if s.State == "missing" {
		fmt.Fprintf(w, "%s %s\n", label, s.Name)
		return
	}

	kind := "interface"
	if s.WireGuard {
		kind = "wireguard"
	}
	fmt.Fprintf(w, "%s %s (%s)\n", label, s.Name, kind)

	if len(s.IPAddr) > 0 {
		fmt.Fprintf(w, "    IP Address: %s\n", strings.Join(s.IPAddr, ", "))
	} else {
		fmt.Fprintln(w, "    IP Address: (none)")
	}
	if s.MTU > 0 {
		fmt.Fprintf(w, "    MTU:        %d\n", s.MTU)
	}
	if s.WireGuard {
		fmt.Fprintf(w, "    Peers:      %d", s.Peers)
		if !s.LastHandshake.IsZero() {
			fmt.Fprintf(w, " (last handshake %s ago)", system.FormatDuration(time.Since(s.LastHandshake)))
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "    RX/TX:      %s / %s\n", formatBytes(s.RXBytes), formatBytes(s.TXBytes))
}

func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
