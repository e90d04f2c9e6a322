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

package sdr

import (
	"bytes"
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/we-are-mono/adsbfeed/logger"
	"github.com/we-are-mono/adsbfeed/state"
	"github.com/we-are-mono/adsbfeed/types"
)

func TestValidateGain(t *testing.T) {
	table := DefaultGainTable()

	tests := []struct {
		driver    string
		requested string
		want      string
		verdict   Verdict
	}{
		{"rtlsdr", "autogain", "autogain", VerdictExact},
		{"rtlsdr", "49.6", "49.6", VerdictExact},
		{"rtlsdr", "99.9", "49.6", VerdictClosest},
		{"rtlsdr", "28", "28.0", VerdictClosest},
		{"rtlsdr", "-5", "0.0", VerdictClosest},
		{"rtlsdr", "max", "autogain", VerdictDefault},
		{"rtlsdr", "", "autogain", VerdictDefault},
		{"rtlsdr", "NaN", "autogain", VerdictDefault},
		{"rtlsdr", "inf", "autogain", VerdictDefault},
		{"airspy", "20", "21", VerdictClosest},
		{"airspy", "autogain", "21", VerdictDefault},
		{"airspy", "4.5", "3", VerdictClosest}, // tie goes to the first member
		{"hackrf", "44", "40", VerdictClosest}, // tie goes to the first member
		{"hackrf", "1000", "48", VerdictClosest},
		{"ftdi", "30", "autogain", VerdictDefault},
		{"ftdi", "autogain", "autogain", VerdictExact},
		{"bladerf", "37", "37", VerdictUnknownDriver},
		{"bladerf", "anything goes", "anything goes", VerdictUnknownDriver},
	}

	for _, tt := range tests {
		t.Run(tt.driver+"/"+tt.requested, func(t *testing.T) {
			got, verdict := table.Validate(tt.driver, tt.requested)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.verdict, verdict)
		})
	}
}

// TestValidateGainClosestIsMinimal checks every result against a brute-force search
func TestValidateGainClosestIsMinimal(t *testing.T) {
	table := DefaultGainTable()

	for driver, spec := range table {
		for x := -10.0; x <= 60.0; x += 0.35 {
			requested := strconv.FormatFloat(x, 'f', 2, 64)
			got, verdict := table.Validate(driver, requested)

			assert.Contains(t, spec.Valid, got, "%s %s", driver, requested)
			if verdict != VerdictClosest {
				continue
			}

			gotF, err := strconv.ParseFloat(got, 64)
			require.NoError(t, err)
			for _, v := range spec.Valid {
				f, err := strconv.ParseFloat(v, 64)
				if err != nil {
					continue
				}
				assert.LessOrEqual(t, math.Abs(gotF-x), math.Abs(f-x)+1e-9, "%s %s: %s beats %s", driver, requested, v, got)
			}
		}
	}
}

// TestValidateGainTotal tests that odd inputs never escape the table
func TestValidateGainTotal(t *testing.T) {
	table := DefaultGainTable()
	inputs := []string{"", " ", "1e400", "-1e400", "0x10", "+Inf", "12,5", "１２", "\x00", "49.6\n"}

	for _, in := range inputs {
		got, _ := table.Validate("rtlsdr", in)
		assert.Contains(t, table["rtlsdr"].Valid, got, "input %q", in)
	}
}

func settings(content string) *state.Settings {
	return state.ParseSettings("", []byte(content))
}

func TestResolvePrimary(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		mode     types.DriverMode
		selector string
		env      []string
	}{
		{
			name:     "auto rtlsdr is native",
			content:  "SDR_1090_DRIVER=rtlsdr\nSDR_1090_DEVICE=0\nSDR_1090_GAIN=99.9\nUSE_SOAPYSDR=auto\n",
			mode:     types.DriverNative,
			selector: "0",
			env:      []string{"READSB_DEVICE_TYPE=rtlsdr", "READSB_RTLSDR_DEVICE=0", "READSB_GAIN=49.6"},
		},
		{
			name:     "auto airspy is abstraction",
			content:  "SDR_1090_DRIVER=airspy\nSDR_1090_SERIAL=0xA74068C82F531693\nSDR_1090_GAIN=21\n",
			mode:     types.DriverAbstraction,
			selector: "driver=airspy,serial=0xA74068C82F531693",
			env:      []string{"READSB_DEVICE_TYPE=soapysdr", "READSB_SOAPY_DEVICE=driver=airspy,serial=0xA74068C82F531693", "READSB_GAIN=21"},
		},
		{
			name:     "native airspy with serial",
			content:  "SDR_1090_DRIVER=airspy\nSDR_1090_SERIAL=0xA74068C82F531693\nSDR_1090_GAIN=17\nUSE_SOAPYSDR=false\n",
			mode:     types.DriverNative,
			selector: "0xA74068C82F531693",
			env:      []string{"READSB_DEVICE_TYPE=airspy", "READSB_AIRSPY_DEVICE=0xA74068C82F531693", "READSB_GAIN=18"},
		},
		{
			name:     "native airspy without serial",
			content:  "SDR_1090_DRIVER=airspy\nSDR_1090_DEVICE=1\nUSE_SOAPYSDR=false\n",
			mode:     types.DriverAbstraction,
			selector: "driver=airspy,index=1",
			env:      []string{"READSB_DEVICE_TYPE=soapysdr", "READSB_SOAPY_DEVICE=driver=airspy,index=1", "READSB_GAIN=21"},
		},
		{
			name:     "native unknown driver",
			content:  "SDR_1090_DRIVER=bladerf\nSDR_1090_GAIN=30\nUSE_SOAPYSDR=false\n",
			mode:     types.DriverAbstraction,
			selector: "driver=bladerf,index=0",
			env:      []string{"READSB_DEVICE_TYPE=soapysdr", "READSB_SOAPY_DEVICE=driver=bladerf,index=0", "READSB_GAIN=30"},
		},
		{
			name:     "forced soapy rtlsdr",
			content:  "SDR_1090_DRIVER=rtlsdr\nSDR_1090_DEVICE=1\nUSE_SOAPYSDR=true\n",
			mode:     types.DriverAbstraction,
			selector: "driver=rtlsdr,index=1",
			env:      []string{"READSB_DEVICE_TYPE=soapysdr", "READSB_SOAPY_DEVICE=driver=rtlsdr,index=1", "READSB_GAIN=autogain"},
		},
		{
			name:     "legacy keys",
			content:  "SDR_1090_TYPE=rtlsdr\nREADSB_DEVICE=2\nREADSB_GAIN=40\n",
			mode:     types.DriverNative,
			selector: "2",
			env:      []string{"READSB_DEVICE_TYPE=rtlsdr", "READSB_RTLSDR_DEVICE=2", "READSB_GAIN=40.2"},
		},
		{
			name:     "empty document",
			content:  "",
			mode:     types.DriverNative,
			selector: "0",
			env:      []string{"READSB_DEVICE_TYPE=rtlsdr", "READSB_RTLSDR_DEVICE=0", "READSB_GAIN=autogain"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewResolver(DefaultGainTable(), nil).ResolvePrimary(settings(tt.content))
			assert.Equal(t, tt.mode, res.Mode)
			assert.Equal(t, tt.selector, res.DeviceSelector)
			assert.Equal(t, tt.env, res.Environment)
		})
	}
}

// TestResolveWarnsOnFallback tests that fallbacks are logged as warnings
func TestResolveWarnsOnFallback(t *testing.T) {
	var buf bytes.Buffer
	emitter := logger.NewEmitter()
	collector := &logger.WarningCollector{}
	emitter.Subscribe(collector)
	log := logger.New(logger.Config{Level: "debug"}, []logger.Backend{logger.NewBufferBackend(&buf, "text")}, emitter)

	NewResolver(DefaultGainTable(), log).ResolvePrimary(settings("SDR_1090_DRIVER=airspy\nUSE_SOAPYSDR=false\nSDR_1090_GAIN=21\n"))

	assert.Equal(t, 1, collector.Count())
	assert.Contains(t, buf.String(), "Airspy serial missing")
}

func TestResolveSecondary(t *testing.T) {
	r := NewResolver(DefaultGainTable(), nil)

	assert.False(t, r.ResolveSecondary(settings("")).Enabled)
	assert.False(t, r.ResolveSecondary(settings("SDR_978_DEVICE=disabled\n")).Enabled)

	sec := r.ResolveSecondary(settings("SDR_978_DEVICE=00000978\nSDR_978_GAIN=42\n"))
	assert.True(t, sec.Enabled)
	assert.Equal(t, "rtlsdr", sec.Driver)
	assert.Equal(t, "1", sec.Path)
	assert.Equal(t, "42.1", sec.Gain)
	assert.False(t, sec.FTDI())

	sec = r.ResolveSecondary(settings("SDR_978_DEVICE=uatradio\nSDR_978_DRIVER=ftdi\nSDR_978_PATH=/dev/ttyUSB0\nSDR_978_GAIN=30\n"))
	assert.True(t, sec.FTDI())
	assert.Equal(t, "/dev/ttyUSB0", sec.Path)
	assert.Equal(t, "autogain", sec.Gain)
}
