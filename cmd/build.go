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
	"github.com/we-are-mono/adsbfeed/engine"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Rebuild the feed list and compose file from the settings",
	Long: `Repairs the settings, selects the priority uplink host, builds ULTRAFEEDER_CONFIG,
resolves the SDR driver and writes docker-compose.yml.

Only a missing settings file is fatal; every other problem is logged and the
build degrades gracefully.`,
	Run: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) {
	withRuntime(cmd, func(rt *runtime) error {
		return executeBuild(cmd.Context(), cmd.OutOrStdout(), rt.engine())
	})
}

// executeBuild runs one pipeline pass and prints its summary.
func executeBuild(ctx context.Context, w io.Writer, eng *engine.Engine) error {
	if ctx == nil {
		ctx = context.Background()
	}

	summary, err := eng.Run(ctx)
	if err != nil {
		return err
	}

	printSummary(w, summary)
	return nil
}

func printSummary(w io.Writer, s *engine.Summary) {
	if s.DryRun {
		fmt.Fprintln(w, "[OK] Configuration built (dry run, nothing written)")
	} else {
		fmt.Fprintln(w, "[OK] Configuration built")
	}

	host := s.Host
	if host == "" {
		host = "(none)"
	}
	fmt.Fprintf(w, "  Priority host: %s (%s)\n", host, s.Reason)
	fmt.Fprintf(w, "  Feeds:         %d\n", s.FeedCount)
	fmt.Fprintf(w, "  SDR:           %s (%s, gain %s)\n", s.SDRDriver, s.SDRMode, s.SDRGain)
	fmt.Fprintf(w, "  Services:      %s\n", strings.Join(s.Services, ", "))
	fmt.Fprintf(w, "  Repairs:       %d\n", len(s.Actions))
	fmt.Fprintf(w, "  Warnings:      %d\n", s.Warnings)
	if !s.DryRun {
		fmt.Fprintf(w, "  Settings:      %s\n", savedLabel(s.SettingsSaved))
		fmt.Fprintf(w, "  Compose:       %s\n", savedLabel(s.ComposeWritten))
	}
	fmt.Fprintf(w, "  Duration:      %s\n", s.Duration.Round(time.Millisecond))
}

func savedLabel(b bool) string {
	if b {
		return "written"
	}
	return "unchanged"
}
