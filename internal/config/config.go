// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// GPS sources.
const (
	GPSSourceSerial = "serial"
	GPSSourceMQTT   = "mqtt"
	GPSSourceMock   = "mock"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker          string
	MQTTClientIDGPS     string
	MQTTClientIDTracker string
	MQTTClientIDConsole string

	// Topics
	TopicGPS             string
	TopicTrackerState    string
	TopicTrackerCommands string

	// GPS
	GPSSource     string // "serial", "mqtt" or "mock"
	GPSSerialPort string
	GPSBaudRate   int

	// Timing
	TickInterval        int     // milliseconds
	LocationMinInterval int     // milliseconds
	LocationMinDistance float64 // metres

	// Web Server
	WebServerPort int

	// Display
	DisplayEnabled bool
	DisplayI2CBus  string // "" picks the first bus; the SSD1306 answers on 0x3C

	// Startup modes
	UseMPH  bool
	DevMode bool
}

// Default returns a Config with every optional value filled in. Load starts
// from these and overrides whatever the file sets.
func Default() *Config {
	return &Config{
		MQTTBroker:           "tcp://localhost:1883",
		MQTTClientIDGPS:      "run-tracker-gps-producer",
		MQTTClientIDTracker:  "run-tracker",
		MQTTClientIDConsole:  "run-tracker-console",
		TopicGPS:             "tracker/gps",
		TopicTrackerState:    "tracker/state",
		TopicTrackerCommands: "tracker/commands",
		GPSSource:            GPSSourceSerial,
		GPSSerialPort:        "/dev/serial0",
		GPSBaudRate:          9600,
		TickInterval:         1000,
		LocationMinInterval:  1000,
		LocationMinDistance:  1,
		WebServerPort:        8080,
		UseMPH:               true,
	}
}

// Package-level unexported variables for the singleton:
//   - globalConfig is only reachable through InitGlobal and Get.
//   - configOnce makes InitGlobal run once.
//   - configMu guards globalConfig for concurrent readers.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads KEY=VALUE lines from r. Blank lines and lines starting with
// '#' are skipped.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_GPS":
		c.MQTTClientIDGPS = value
	case "MQTT_CLIENT_ID_TRACKER":
		c.MQTTClientIDTracker = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value

	// Topics
	case "TOPIC_GPS":
		c.TopicGPS = value
	case "TOPIC_TRACKER_STATE":
		c.TopicTrackerState = value
	case "TOPIC_TRACKER_COMMANDS":
		c.TopicTrackerCommands = value

	// GPS
	case "GPS_SOURCE":
		switch value {
		case GPSSourceSerial, GPSSourceMQTT, GPSSourceMock:
			c.GPSSource = value
		default:
			return fmt.Errorf("GPS_SOURCE must be serial, mqtt or mock, got %q", value)
		}
	case "GPS_SERIAL_PORT":
		c.GPSSerialPort = value
	case "GPS_BAUD_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid GPS_BAUD_RATE %q: %w", value, err)
		}
		c.GPSBaudRate = rate

	// Timing
	case "TICK_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid TICK_INTERVAL %q: %w", value, err)
		}
		c.TickInterval = interval
	case "LOCATION_MIN_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid LOCATION_MIN_INTERVAL %q: %w", value, err)
		}
		c.LocationMinInterval = interval
	case "LOCATION_MIN_DISTANCE":
		dist, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid LOCATION_MIN_DISTANCE %q: %w", value, err)
		}
		if dist < 0 {
			return fmt.Errorf("LOCATION_MIN_DISTANCE must not be negative, got %v", dist)
		}
		c.LocationMinDistance = dist

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		c.WebServerPort = port

	// Display
	case "DISPLAY_ENABLED":
		on, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_ENABLED %q: %w", value, err)
		}
		c.DisplayEnabled = on
	case "DISPLAY_I2C_BUS":
		c.DisplayI2CBus = value

	// Startup modes
	case "USE_MPH":
		on, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid USE_MPH %q: %w", value, err)
		}
		c.UseMPH = on
	case "DEV_MODE":
		on, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid DEV_MODE %q: %w", value, err)
		}
		c.DevMode = on

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.GPSSource == GPSSourceSerial {
		if c.GPSSerialPort == "" {
			return fmt.Errorf("GPS_SERIAL_PORT is required")
		}
		if c.GPSBaudRate <= 0 {
			return fmt.Errorf("GPS_BAUD_RATE is required")
		}
	}
	if c.GPSSource == GPSSourceMQTT && c.TopicGPS == "" {
		return fmt.Errorf("TOPIC_GPS is required when GPS_SOURCE=mqtt")
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("TICK_INTERVAL must be positive")
	}
	if c.LocationMinInterval < 0 {
		return fmt.Errorf("LOCATION_MIN_INTERVAL must not be negative")
	}
	return nil
}

// Tick returns TICK_INTERVAL as a duration.
func (c *Config) Tick() time.Duration {
	return time.Duration(c.TickInterval) * time.Millisecond
}

// MinInterval returns LOCATION_MIN_INTERVAL as a duration.
func (c *Config) MinInterval() time.Duration {
	return time.Duration(c.LocationMinInterval) * time.Millisecond
}

// InitGlobal initializes the global configuration from file.
// Only the first call loads anything.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance, or nil before InitGlobal.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
