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
	"github.com/we-are-mono/adsbfeed/engine"
)

var repairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Repair and migrate the settings file",
	Long: `Fills in missing required keys, renames legacy keys and migrates retired
server addresses. Unknown keys are preserved. Running it twice is a no-op.`,
	Run: runRepair,
}

func init() {
	rootCmd.AddCommand(repairCmd)
}

func runRepair(cmd *cobra.Command, args []string) {
	withRuntime(cmd, func(rt *runtime) error {
		return executeRepair(cmd.OutOrStdout(), rt.engine(), dryRun)
	})
}

// executeRepair repairs the settings and lists every change made.
func executeRepair(w io.Writer, eng *engine.Engine, dry bool) error {
	_, report, err := eng.Repair()
	if err != nil {
		return err
	}

	if !report.Repaired {
		fmt.Fprintln(w, "[OK] Settings are up to date")
		return nil
	}

	for _, a := range report.Actions {
		switch a.ChangeType {
		case "renamed":
			fmt.Fprintf(w, "  ~ %s -> %s = %q\n", a.From, a.Key, a.New)
		case "migrated":
			fmt.Fprintf(w, "  ~ %s: %q -> %q\n", a.Key, a.Old, a.New)
		default:
			fmt.Fprintf(w, "  + %s = %q\n", a.Key, a.New)
		}
	}

	if dry {
		fmt.Fprintf(w, "[OK] %d change(s) needed (dry run, nothing written)\n", len(report.Actions))
	} else {
		fmt.Fprintf(w, "[OK] %d change(s) applied\n", len(report.Actions))
	}
	return nil
}
