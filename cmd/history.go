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
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/we-are-mono/adsbfeed/history"
)

var (
	historyLimit int
	historyGraph bool
	historyWidth int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent build runs",
	Long:  `Lists recent runs from the history database, newest first. With --graph, plots the active feed count per run.`,
	Run:   runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of runs to show")
	historyCmd.Flags().BoolVar(&historyGraph, "graph", false, "Plot feed counts instead of listing runs")
	historyCmd.Flags().IntVar(&historyWidth, "width", 60, "Graph width in columns")
}

func runHistory(cmd *cobra.Command, args []string) {
	withRuntime(cmd, func(rt *runtime) error {
		if !rt.feeder.History.Enabled {
			return fmt.Errorf("run history is disabled in adsbfeed.json")
		}
		return executeHistory(cmd.OutOrStdout(), rt.feeder.History.Path, historyLimit, historyGraph, historyWidth)
	})
}

// executeHistory prints recent runs or a feed-count graph.
func executeHistory(w io.Writer, path string, limit int, graph bool, width int) error {
	store, err := history.Open(path, 0)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Recent(limit)
	if err != nil {
		return err
	}

	if graph {
		fmt.Fprint(w, history.Graph(runs, width, 10))
		return nil
	}

	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded yet.")
		return nil
	}

	fmt.Fprintf(w, "%-5s %-19s %-5s %-24s %-16s %-8s %s\n", "ID", "STARTED", "FEEDS", "HOST", "REASON", "SDR", "FLAGS")
	for _, r := range runs {
		flags := ""
		if r.Repaired {
			flags += "R"
		}
		if r.DryRun {
			flags += "D"
		}
		if r.Warnings > 0 {
			flags += fmt.Sprintf("W%d", r.Warnings)
		}
		fmt.Fprintf(w, "%-5d %-19s %-5d %-24s %-16s %-8s %s\n",
			r.ID, r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.FeedCount, orNone(r.Host), r.Reason, r.SDRDriver, flags)
	}
	return nil
}
