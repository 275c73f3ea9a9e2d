// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"strings"

	nmea "github.com/adrianmo/go-nmea"

	"github.com/relabs-tech/run_tracker/internal/speed"
	"github.com/relabs-tech/run_tracker/internal/tracker"
)

// Fix represents a single combined GPS fix suitable for JSON and MQTT.
type Fix struct {
	Time       string  `json:"time"`        // e.g. "12:34:56"
	Date       string  `json:"date"`        // library format, dd/mm/yy
	Latitude   float64 `json:"lat"`         // decimal degrees
	Longitude  float64 `json:"lon"`         // decimal degrees
	SpeedKnots float64 `json:"speed_knots"` // speed over ground
	CourseDeg  float64 `json:"course_deg"`  // course over ground
	Validity   string  `json:"validity"`    // "A" (valid) / "V" (void)
}

// Valid reports whether the receiver had a fix.
func (f Fix) Valid() bool {
	return f.Validity == nmea.ValidRMC
}

// Sample converts the fix into a controller sample (speed in m/s).
func (f Fix) Sample() tracker.LocationSample {
	return tracker.LocationSample{
		Latitude:  f.Latitude,
		Longitude: f.Longitude,
		SpeedMPS:  speed.FromKnots(f.SpeedKnots),
	}
}

// FromRMC fills a Fix from an RMC sentence.
func FromRMC(m nmea.RMC) Fix {
	return Fix{
		Time:       m.Time.String(),
		Date:       m.Date.String(),
		Latitude:   m.Latitude,
		Longitude:  m.Longitude,
		SpeedKnots: m.Speed,
		CourseDeg:  m.Course,
		Validity:   m.Validity,
	}
}

// ParseRMC parses one NMEA line. ok is false for blank lines, non-NMEA
// noise and sentence types other than RMC; err is set when the line looked
// like NMEA but did not parse.
func ParseRMC(line string) (fix Fix, ok bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" || !strings.HasPrefix(line, "$") {
		return Fix{}, false, nil
	}

	sentence, err := nmea.Parse(line)
	if err != nil {
		return Fix{}, false, err
	}
	if sentence.DataType() != nmea.TypeRMC {
		return Fix{}, false, nil
	}

	return FromRMC(sentence.(nmea.RMC)), true, nil
}
