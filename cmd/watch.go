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
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/we-are-mono/adsbfeed/engine"
	"github.com/we-are-mono/adsbfeed/state"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild whenever the settings or outputs change",
	Long: `Runs a build, then watches .env and outputs.json and rebuilds after each burst
of changes. Builds never overlap. Stops on SIGINT or SIGTERM.`,
	Run: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 2*time.Second, "Quiet period before rebuilding")
}

func runWatch(cmd *cobra.Command, args []string) {
	withRuntime(cmd, func(rt *runtime) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		settings := settingsPath()
		names := []string{filepath.Base(settings), state.OutputsFileName}
		return executeWatch(ctx, cmd.OutOrStdout(), rt.engine(), filepath.Dir(settings), names, watchDebounce)
	})
}

// executeWatch builds once, then rebuilds after changes to names in dir settle
// for debounce. A build rewrites .env only when its content changes, so the
// follow-up event from our own write converges after one extra pass.
func executeWatch(ctx context.Context, w io.Writer, eng *engine.Engine, dir string, names []string, debounce time.Duration) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	watched := make(map[string]bool, len(names))
	for _, n := range names {
		watched[n] = true
	}

	build := func() {
		if err := executeBuild(ctx, w, eng); err != nil {
			fmt.Fprintf(w, "[ERROR] %v\n", err)
		}
	}

	build()

	// Editors replace files by rename, so watch the directory rather than the files.
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	fmt.Fprintf(w, "Watching %s for changes...\n", dir)

	timer := time.NewTimer(debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !watched[filepath.Base(event.Name)] {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(w, "[WARN] watcher: %v\n", err)

		case <-timer.C:
			build()
		}
	}
}
