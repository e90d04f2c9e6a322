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
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/we-are-mono/adsbfeed/sdr"
	"github.com/we-are-mono/adsbfeed/state"
	"github.com/we-are-mono/adsbfeed/validation"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the settings and outputs files without building",
	Long: `Checks .env for out-of-range coordinates, malformed hosts and ports, unknown
choices and gains that would be replaced, and checks every outputs.json entry.`,
	Run: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) {
	if err := executeValidate(cmd.OutOrStdout(), settingsPath(), outputsPath(), sdr.DefaultGainTable()); err != nil {
		cmd.PrintErrln(fmt.Sprintf("[ERROR] %v", err))
		exitWithError()
	}
}

// executeValidate reports every problem in the settings and outputs files.
func executeValidate(w io.Writer, settingsFile, outputsFile string, gains sdr.GainTable) error {
	hasErrors := false

	settings, err := state.LoadSettings(settingsFile)
	if err != nil {
		return err
	}

	if err := validation.ValidateSettings(settings, gains); err != nil {
		fmt.Fprintf(w, "[FAIL] %s:\n", settings.Path())
		printJoined(w, err)
		hasErrors = true
	} else {
		fmt.Fprintf(w, "[OK] %s: valid\n", settings.Path())
	}

	if _, err := os.Stat(outputsFile); errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(w, "[SKIP] %s: not found (optional)\n", outputsFile)
	} else if doc, err := state.LoadOutputs(outputsFile); err != nil {
		fmt.Fprintf(w, "[FAIL] %s: %v\n", outputsFile, err)
		hasErrors = true
	} else if _, errs := state.EnabledOutputs(doc); len(errs) > 0 {
		fmt.Fprintf(w, "[FAIL] %s:\n", outputsFile)
		printJoined(w, errors.Join(errs...))
		hasErrors = true
	} else {
		fmt.Fprintf(w, "[OK] %s: valid\n", outputsFile)
	}

	if hasErrors {
		return fmt.Errorf("validation failed - please fix the errors above")
	}
	fmt.Fprintln(w, "[OK] All configuration files are valid")
	return nil
}

// printJoined prints each error of an errors.Join result on its own line
func printJoined(w io.Writer, err error) {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			fmt.Fprintf(w, "    - %v\n", e)
		}
		return
	}
	fmt.Fprintf(w, "    - %v\n", err)
}
