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
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/we-are-mono/adsbfeed/state"
	"github.com/we-are-mono/adsbfeed/system"
)

// TestExecuteBuild tests the build command against a complete settings file
func TestExecuteBuild(t *testing.T) {
	tests := []struct {
		name        string
		netbird     bool
		dry         bool
		wantOutput  []string
		wantMissing []string
	}{
		{
			name:    "netbird connected",
			netbird: true,
			wantOutput: []string{
				"[OK] Configuration built\n",
				"Priority host: vpn.example.com (netbird-active)",
				"Feeds:         2",
				"SDR:           rtlsdr (native, gain autogain)",
				"Services:      ultrafeeder, fr24, piaware, adsbhub",
				"Compose:       written",
			},
		},
		{
			name: "netbird down",
			wantOutput: []string{
				"Priority host: fb.example.com (vpn-inactive)",
			},
		},
		{
			name:    "dry run",
			netbird: true,
			dry:     true,
			wantOutput: []string{
				"(dry run, nothing written)",
			},
			wantMissing: []string{"Compose:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			te := newTestEnv(t, completeSettings)
			if tt.netbird {
				te.runner.On("netbird status --json", system.CommandResult{Output: netbirdConnected})
			}

			var buf bytes.Buffer
			err := executeBuild(context.Background(), &buf, te.engine(tt.dry))
			require.NoError(t, err)

			for _, want := range tt.wantOutput {
				assert.Contains(t, buf.String(), want)
			}
			for _, missing := range tt.wantMissing {
				assert.NotContains(t, buf.String(), missing)
			}

			_, statErr := os.Stat(te.path("docker-compose.yml"))
			assert.Equal(t, tt.dry, os.IsNotExist(statErr))
		})
	}
}

func TestExecuteBuildMissingSettings(t *testing.T) {
	te := newTestEnv(t, "")

	var buf bytes.Buffer
	err := executeBuild(context.Background(), &buf, te.engine(false))
	require.Error(t, err)
	assert.True(t, errors.Is(err, state.ErrSettingsNotFound))
	assert.Empty(t, buf.String())
}

func TestExecuteRepair(t *testing.T) {
	te := newTestEnv(t, "FEEDER_LAT=1\nREADSB_GAIN=40.2\nTAKNET_PS_SERVER_HOST_FALLBACK=104.225.219.254\n")

	var buf bytes.Buffer
	require.NoError(t, executeRepair(&buf, te.engine(false), false))

	out := buf.String()
	assert.Contains(t, out, `~ READSB_GAIN -> SDR_1090_GAIN = "40.2"`)
	assert.Contains(t, out, `+ TAKNET_PS_ENABLED = "true"`)
	assert.Contains(t, out, "change(s) applied")
	assert.Contains(t, te.read(t, ".env"), "SDR_1090_GAIN=40.2\n")

	buf.Reset()
	require.NoError(t, executeRepair(&buf, te.engine(false), false))
	assert.Equal(t, "[OK] Settings are up to date\n", buf.String())
}

func TestExecuteRepairDryRun(t *testing.T) {
	te := newTestEnv(t, "FEEDER_LAT=1\n")

	var buf bytes.Buffer
	require.NoError(t, executeRepair(&buf, te.engine(true), true))

	assert.Contains(t, buf.String(), "(dry run, nothing written)")
	assert.Equal(t, "FEEDER_LAT=1\n", te.read(t, ".env"))
}

func TestExecuteRepairMissingSettings(t *testing.T) {
	te := newTestEnv(t, "")

	var buf bytes.Buffer
	err := executeRepair(&buf, te.engine(false), false)
	assert.True(t, errors.Is(err, state.ErrSettingsNotFound))
}
