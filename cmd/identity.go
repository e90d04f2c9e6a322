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
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/we-are-mono/adsbfeed/state"
	"github.com/we-are-mono/adsbfeed/validation"
)

// FeederUUIDKey identifies this feeder to the aggregators that need one
const FeederUUIDKey = "FEEDER_UUID"

var identityRegenerate bool

var identityCmd = &cobra.Command{
	Use:   "identity",
	Short: "Show or create the feeder UUID",
	Long:  `Prints FEEDER_UUID. When it is missing or malformed a random one is generated and saved to the settings file.`,
	Run:   runIdentity,
}

func init() {
	rootCmd.AddCommand(identityCmd)
	identityCmd.Flags().BoolVar(&identityRegenerate, "regenerate", false, "Replace the existing UUID")
}

func runIdentity(cmd *cobra.Command, args []string) {
	if err := executeIdentity(cmd.OutOrStdout(), settingsPath(), identityRegenerate, dryRun, uuid.NewString); err != nil {
		cmd.PrintErrln(fmt.Sprintf("[ERROR] %v", err))
		exitWithError()
	}
}

// executeIdentity prints the feeder UUID, generating one with newID when needed.
func executeIdentity(w io.Writer, settingsFile string, regenerate, dry bool, newID func() string) error {
	settings, err := state.LoadSettings(settingsFile)
	if err != nil {
		return err
	}

	current := strings.TrimSpace(settings.Get(FeederUUIDKey))
	if current != "" && !regenerate {
		if err := validation.ValidateUUID(current); err == nil {
			fmt.Fprintln(w, current)
			return nil
		}
		fmt.Fprintf(w, "[WARN] replacing malformed %s %q\n", FeederUUIDKey, current)
	}

	id := newID()
	settings.Set(FeederUUIDKey, id)

	if dry {
		fmt.Fprintf(w, "%s (dry run, not saved)\n", id)
		return nil
	}
	if err := settings.Save(); err != nil {
		return fmt.Errorf("failed to save %s: %w", FeederUUIDKey, err)
	}

	fmt.Fprintln(w, id)
	return nil
}
