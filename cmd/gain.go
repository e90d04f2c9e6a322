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
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/we-are-mono/adsbfeed/sdr"
)

var gainCmd = &cobra.Command{
	Use:   "gain <driver> [value]",
	Short: "Check a gain value against a driver's gain table",
	Long: `Shows the gain a requested value resolves to for the given driver: the exact
step, the closest numeric step, or the driver default. Without a value, lists
the valid steps.`,
	Args: cobra.RangeArgs(1, 2),
	Run:  runGain,
}

func init() {
	rootCmd.AddCommand(gainCmd)
}

func runGain(cmd *cobra.Command, args []string) {
	value := ""
	if len(args) > 1 {
		value = args[1]
	}
	if err := executeGain(cmd.OutOrStdout(), sdr.DefaultGainTable(), args[0], value); err != nil {
		cmd.PrintErrln(fmt.Sprintf("[ERROR] %v", err))
		exitWithError()
	}
}

// executeGain resolves value against the driver's table, or lists the table when value is empty.
func executeGain(w io.Writer, table sdr.GainTable, driver, value string) error {
	driver = strings.ToLower(strings.TrimSpace(driver))

	if value == "" {
		spec, ok := table[driver]
		if !ok {
			return fmt.Errorf("unknown driver %s (known: %s)", driver, strings.Join(knownDrivers(table), ", "))
		}
		fmt.Fprintf(w, "%s (default %s):\n", driver, spec.Default)
		fmt.Fprintf(w, "  %s\n", strings.Join(spec.Valid, " "))
		return nil
	}

	resolved, verdict := table.Validate(driver, value)
	switch verdict {
	case sdr.VerdictExact:
		fmt.Fprintf(w, "[OK] %s is a valid %s gain\n", resolved, driver)
	case sdr.VerdictClosest:
		fmt.Fprintf(w, "[WARN] %s is not a %s gain step; closest is %s\n", value, driver, resolved)
	case sdr.VerdictDefault:
		fmt.Fprintf(w, "[WARN] %s is not numeric; %s default is %s\n", value, driver, resolved)
	default:
		fmt.Fprintf(w, "[INFO] no gain table for %s; %s is passed through\n", driver, resolved)
	}
	return nil
}

func knownDrivers(table sdr.GainTable) []string {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
