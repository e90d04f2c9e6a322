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

package compose

import (
	"strings"

	"github.com/we-are-mono/adsbfeed/sdr"
)

// Images
const (
	UltrafeederImage = "ghcr.io/sdr-enthusiasts/docker-adsb-ultrafeeder:latest"
	FR24Image        = "ghcr.io/sdr-enthusiasts/docker-flightradar24:latest"
	PiAwareImage     = "ghcr.io/sdr-enthusiasts/docker-piaware:latest"
	ADSBHubImage     = "ghcr.io/sdr-enthusiasts/docker-adsbhub:latest"
	Dump978Image     = "ghcr.io/sdr-enthusiasts/docker-dump978:latest"
)

const usbBus = "/dev/bus/usb:/dev/bus/usb"

// Reader is the subset of the settings store the assembler reads
type Reader interface {
	Get(key string) string
	GetDefault(key, def string) string
	GetNonEmpty(key, def string) string
}

// Assemble builds the compose project. It is a pure transform: missing values
// such as an unset location pass through as empty.
func Assemble(s Reader, feedConfig string, primary sdr.Resolution, secondary sdr.Secondary) *Project {
	tz := s.GetNonEmpty("FEEDER_TZ", "UTC")

	p := &Project{
		Networks: map[string]Network{NetworkName: {Driver: "bridge"}},
		Services: Services{
			ultrafeeder(s, tz, feedConfig, primary),
			fr24(s),
			piaware(s, tz),
			adsbhub(s, tz),
		},
	}

	if secondary.Enabled {
		p.Services = append(p.Services, dump978(s, tz, secondary))
	}
	return p
}

func base(name, image string) *Service {
	return &Service{
		Name:          name,
		Image:         image,
		ContainerName: name,
		Hostname:      name,
		Restart:       "unless-stopped",
		Networks:      []string{NetworkName},
	}
}

func ultrafeeder(s Reader, tz, feedConfig string, primary sdr.Resolution) *Service {
	alt := strings.TrimSpace(s.Get("FEEDER_ALT_M"))
	if alt != "" {
		alt += "m"
	}

	env := []string{
		"TZ=" + tz,
		"LAT=" + s.Get("FEEDER_LAT"),
		"LONG=" + s.Get("FEEDER_LONG"),
		"ALT=" + alt,
		"UUID=" + s.Get("FEEDER_UUID"),
	}
	env = append(env, primary.Environment...)
	env = append(env,
		"READSB_RX_LOCATION_ACCURACY=2",
		"READSB_STATS_RANGE=true",
		"MLAT_USER="+s.GetDefault("MLAT_SITE_NAME", "feeder"),
		"UPDATE_TAR1090=true",
		"TAR1090_ENABLE_AC_DB=true",
		"TAR1090_FLIGHTAWARELINKS=true",
		"TAR1090_SITESHOW=true",
		"ULTRAFEEDER_CONFIG="+feedConfig,
		"PROMETHEUS_ENABLE=true",
	)

	svc := base("ultrafeeder", UltrafeederImage)
	svc.Ports = []string{"8080:80", "9273-9274:9273-9274"}
	svc.Environment = env
	svc.Devices = []string{usbBus}
	svc.Volumes = []string{
		"/opt/adsb/ultrafeeder:/opt/adsb",
		"/run/readsb:/run/readsb",
		"/proc/diskstats:/proc/diskstats:ro",
	}
	svc.Tmpfs = []string{"/run:exec,size=256M", "/tmp:size=128M"}
	return svc
}

// fr24 is always defined; without a key the container has nothing to share
func fr24(s Reader) *Service {
	env := []string{"BEASTHOST=ultrafeeder", "BEASTPORT=30005"}
	if key := s.GetNonEmpty("FR24_KEY", s.GetNonEmpty("FR24_SHARING_KEY", "")); key != "" {
		env = append(env, "FR24KEY="+key)
	}
	env = append(env, "MLAT=yes")

	svc := base("fr24", FR24Image)
	svc.DependsOn = []string{"ultrafeeder"}
	svc.Ports = []string{"8754:8754"}
	svc.Environment = env
	svc.Tmpfs = []string{"/var/log"}
	return svc
}

func piaware(s Reader, tz string) *Service {
	svc := base("piaware", PiAwareImage)
	svc.DependsOn = []string{"ultrafeeder"}
	svc.Ports = []string{"8082:80"}
	svc.Environment = []string{
		"TZ=" + tz,
		"FEEDER_ID=" + s.Get("PIAWARE_FEEDER_ID"),
		"RECEIVER_TYPE=relay",
		"BEASTHOST=ultrafeeder",
		"BEASTPORT=30005",
		"ALLOW_MLAT=yes",
		"MLAT_RESULTS=yes",
	}
	svc.Tmpfs = []string{"/run:exec,size=64M", "/var/log"}
	return svc
}

func adsbhub(s Reader, tz string) *Service {
	svc := base("adsbhub", ADSBHubImage)
	svc.DependsOn = []string{"ultrafeeder"}
	svc.Environment = []string{
		"TZ=" + tz,
		"SBSHOST=ultrafeeder",
		"CLIENTKEY=" + s.Get("ADSBHUB_STATION_KEY"),
	}
	return svc
}

// dump978 binds the hackrf driver for FTDI UATRadio hardware and the RTL-SDR
// driver otherwise; each needs a different device mapping
func dump978(s Reader, tz string, radio sdr.Secondary) *Service {
	env := []string{
		"TZ=" + tz,
		"LAT=" + s.Get("FEEDER_LAT"),
		"LONG=" + s.Get("FEEDER_LONG"),
		"DUMP978_DEVICE=" + radio.Path,
	}

	svc := base("dump978", Dump978Image)
	if radio.FTDI() {
		svc.Devices = []string{radio.Path + ":" + radio.Path + ":rw"}
		env = append(env,
			"DUMP978_DRIVER=hackrf",
			"DUMP978_SDR_AGC=off",
			"DUMP978_JSON_STDOUT=true",
		)
	} else {
		svc.Devices = []string{usbBus}
		env = append(env,
			"DUMP978_SDR_GAIN="+radio.Gain,
			"DUMP978_SDR_AGC=off",
			"DUMP978_JSON_STDOUT=true",
		)
		if radio.Gain != "" && radio.Gain != sdr.AutoGain {
			env = append(env, "DUMP978_GAIN="+radio.Gain)
		}
	}

	svc.Environment = env
	svc.Tmpfs = []string{"/run:exec,size=64M", "/var/log"}
	svc.Profiles = []string{"dump978"}
	return svc
}
