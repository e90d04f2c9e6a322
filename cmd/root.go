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

// Package cmd implements the CLI commands for adsbfeed using cobra.
// It provides the root command structure, shared flags and version management.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/we-are-mono/adsbfeed/engine"
	"github.com/we-are-mono/adsbfeed/logger"
	"github.com/we-are-mono/adsbfeed/state"
	"github.com/we-are-mono/adsbfeed/types"
)

// Version is the application version string.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

var (
	configDir   string
	envFile     string
	composeFile string
	logLevel    string
	logFormat   string
	dryRun      bool
)

var rootCmd = &cobra.Command{
	Use:   "adsbfeed",
	Short: "adsbfeed - ADS-B feeder configuration engine",
	Long: `adsbfeed rebuilds the feeder's connector list and service definitions
from its .env settings.

It repairs legacy settings, picks the priority uplink host over the VPN when
it is up, resolves the SDR driver and gain, and writes docker-compose.yml.`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if configDir != "" {
			os.Setenv("ADSBFEED_CONFIG_DIR", configDir)
		}
	},
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("adsbfeed v%s (built: %s)\n", Version, BuildTime))

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configDir, "config-dir", "", "Configuration directory (default: $ADSBFEED_CONFIG_DIR or /opt/adsb/config)")
	flags.StringVar(&envFile, "env-file", "", "Settings file (default: <config dir>/.env)")
	flags.StringVar(&composeFile, "compose-file", "", "Compose file to write (default: <config dir>/docker-compose.yml)")
	flags.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&logFormat, "log-format", "", "Log format: text, json")
	flags.BoolVar(&dryRun, "dry-run", false, "Compute everything but write nothing")
}

// Execute runs the root command and handles any errors.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// SetVersion updates the version and build time for display in help and version output.
func SetVersion(version, buildTime string) {
	Version = version
	BuildTime = buildTime
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(fmt.Sprintf("adsbfeed v%s (built: %s)\n", version, buildTime))
}

// exitWithError is a helper function that exits with code 1.
// It can be overridden in tests to avoid actual exit.
var exitWithError = func() {
	os.Exit(1)
}

func settingsPath() string {
	if envFile != "" {
		return envFile
	}
	return filepath.Join(state.GetConfigDir(), state.SettingsFileName)
}

func composePath() string {
	if composeFile != "" {
		return composeFile
	}
	return filepath.Join(state.GetConfigDir(), state.ComposeFileName)
}

func outputsPath() string {
	return filepath.Join(state.GetConfigDir(), state.OutputsFileName)
}

// runtime bundles what every command needs: the engine's own config and a logger
// whose warnings are counted for the run summary.
type runtime struct {
	feeder   *types.FeederConfig
	log      logger.Logger
	warnings *logger.WarningCollector
	close    func()
}

func setupRuntime() (*runtime, error) {
	feeder, err := state.LoadFeederConfig()
	if err != nil {
		return nil, err
	}

	cfg := *feeder.Logging
	if logLevel != "" {
		cfg.Level = logLevel
	}
	if logFormat != "" {
		cfg.Format = logFormat
	}

	emitter := logger.NewEmitter()
	warnings := &logger.WarningCollector{}
	emitter.Subscribe(warnings)

	log, closeFn := logger.Setup(logger.Config{
		Level:     cfg.Level,
		Format:    cfg.Format,
		Outputs:   cfg.Outputs,
		FilePath:  cfg.File,
		Component: "adsbfeed",
	}, emitter)

	return &runtime{feeder: feeder, log: log, warnings: warnings, close: closeFn}, nil
}

func (r *runtime) engine() *engine.Engine {
	return engine.New(engine.Options{
		Logger:       r.log,
		Warnings:     r.warnings,
		Feeder:       r.feeder,
		SettingsPath: settingsPath(),
		ComposePath:  composePath(),
		OutputsPath:  outputsPath(),
		DryRun:       dryRun,
	})
}

// withRuntime runs fn with a fresh runtime and exits non-zero when it fails.
func withRuntime(cmd *cobra.Command, fn func(rt *runtime) error) {
	rt, err := setupRuntime()
	if err != nil {
		cmd.PrintErrln(fmt.Sprintf("[ERROR] %v", err))
		exitWithError()
		return
	}
	defer rt.close()

	if err := fn(rt); err != nil {
		cmd.PrintErrln(fmt.Sprintf("[ERROR] %v", err))
		exitWithError()
	}
}
