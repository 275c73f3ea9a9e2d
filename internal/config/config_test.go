// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(strings.NewReader("# only comments\n\n"))
	require.NoError(t, err)

	assert.Equal(t, "tcp://localhost:1883", cfg.MQTTBroker)
	assert.Equal(t, GPSSourceSerial, cfg.GPSSource)
	assert.Equal(t, time.Second, cfg.Tick())
	assert.Equal(t, time.Second, cfg.MinInterval())
	assert.Equal(t, 1.0, cfg.LocationMinDistance)
	assert.True(t, cfg.UseMPH)
	assert.False(t, cfg.DevMode)
}

func TestParseOverrides(t *testing.T) {
	in := `
MQTT_BROKER = tcp://broker.local:1883
GPS_SOURCE=mqtt
TOPIC_GPS=inertial/gps
TICK_INTERVAL=500
LOCATION_MIN_DISTANCE=2.5
DISPLAY_ENABLED=true
DISPLAY_I2C_BUS=1
USE_MPH=false
DEV_MODE=1
WEB_SERVER_PORT=9090
`
	cfg, err := Parse(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, "tcp://broker.local:1883", cfg.MQTTBroker)
	assert.Equal(t, GPSSourceMQTT, cfg.GPSSource)
	assert.Equal(t, "inertial/gps", cfg.TopicGPS)
	assert.Equal(t, 500*time.Millisecond, cfg.Tick())
	assert.Equal(t, 2.5, cfg.LocationMinDistance)
	assert.True(t, cfg.DisplayEnabled)
	assert.Equal(t, "1", cfg.DisplayI2CBus)
	assert.False(t, cfg.UseMPH)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, 9090, cfg.WebServerPort)
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"missing equals": "MQTT_BROKER",
		"unknown key":    "FOO=bar",
		"bad int":        "GPS_BAUD_RATE=fast",
		"bad source":     "GPS_SOURCE=bluetooth",
		"bad bool":       "USE_MPH=perhaps",
		"empty broker":   "MQTT_BROKER=",
		"zero tick":      "TICK_INTERVAL=0",
		"neg distance":   "LOCATION_MIN_DISTANCE=-1",
	}
	for name, in := range cases {
		_, err := Parse(strings.NewReader(in))
		assert.Error(t, err, name)
	}
}

func TestParseReportsLineNumber(t *testing.T) {
	_, err := Parse(strings.NewReader("USE_MPH=true\n\nNOPE=1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config line 3")
}

func TestLoadAndGlobal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run_tracker_config.txt")
	require.NoError(t, os.WriteFile(path, []byte("GPS_SOURCE=mock\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, GPSSourceMock, cfg.GPSSource)

	_, err = Load(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)

	require.NoError(t, InitGlobal(path))
	require.NotNil(t, Get())
	assert.Equal(t, GPSSourceMock, Get().GPSSource)
}
