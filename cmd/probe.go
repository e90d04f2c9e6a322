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
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/we-are-mono/adsbfeed/probe"
	"github.com/we-are-mono/adsbfeed/types"
)

var probeJSON bool

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check NetBird and Tailscale connectivity",
	Long: `Runs both VPN probes and prints what each reports. Only NetBird decides the
priority uplink host; Tailscale is shown for diagnostics.`,
	Run: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
	probeCmd.Flags().BoolVar(&probeJSON, "json", false, "Print results as JSON")
}

func runProbe(cmd *cobra.Command, args []string) {
	withRuntime(cmd, func(rt *runtime) error {
		netbird, tailscale := rt.engine().Probes()
		return executeProbe(cmd.Context(), cmd.OutOrStdout(), probeJSON, netbird, tailscale)
	})
}

// executeProbe runs each probe in turn and prints the results.
func executeProbe(ctx context.Context, w io.Writer, asJSON bool, probes ...*probe.Probe) error {
	if ctx == nil {
		ctx = context.Background()
	}

	results := make([]types.ProbeResult, 0, len(probes))
	for _, p := range probes {
		results = append(results, p.Check(ctx))
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	for _, r := range results {
		printProbeResult(w, r)
	}
	return nil
}

func printProbeResult(w io.Writer, r types.ProbeResult) {
	if r.Connected {
		fmt.Fprintf(w, "[UP]   %-10s %s (via %s)\n", r.Tool, orNone(r.OverlayIP), r.Source)
		return
	}

	detail := r.Detail
	if detail == "" {
		detail = "not connected"
	}
	fmt.Fprintf(w, "[DOWN] %-10s %s\n", r.Tool, detail)
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
