// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package speed converts raw GPS speed into display units and classifies
// the result into colour tiers.
package speed

import "fmt"

// MPSToMPH converts metres per second to miles per hour.
const MPSToMPH = 2.23694

// KnotsToMPS converts knots (NMEA speed over ground) to metres per second.
const KnotsToMPS = 0.514444

// Tier thresholds. The m/s values are the mph ones divided by MPSToMPH,
// rounded to four places.
const (
	elevatedMPH = 33.0
	highMPH     = 66.0
	elevatedMPS = 14.7523
	highMPS     = 29.5046
)

// Unit is the label shown next to the speed.
type Unit string

const (
	MPH Unit = "mph"
	MPS Unit = "m/s"
)

func (u Unit) String() string { return string(u) }

// Tier is the coarse speed class used for colour coding.
type Tier int

const (
	Normal Tier = iota
	Elevated
	High
)

func (t Tier) String() string {
	switch t {
	case Normal:
		return "normal"
	case Elevated:
		return "elevated"
	case High:
		return "high"
	default:
		return "unknown"
	}
}

// Color returns the colour name the web page uses for this tier.
func (t Tier) Color() string {
	switch t {
	case Elevated:
		return "orange"
	case High:
		return "red"
	default:
		return "green"
	}
}

// MarshalText lets Tier appear by name in JSON payloads.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText parses a tier name written by MarshalText.
func (t *Tier) UnmarshalText(b []byte) error {
	switch string(b) {
	case "normal":
		*t = Normal
	case "elevated":
		*t = Elevated
	case "high":
		*t = High
	default:
		return fmt.Errorf("speed: unknown tier %q", b)
	}
	return nil
}

// Convert maps a raw speed in m/s to the selected display unit.
// No validation is done: NaN and negative values pass straight through.
func Convert(mps float64, useMPH bool) (float64, Unit) {
	if useMPH {
		return mps * MPSToMPH, MPH
	}
	return mps, MPS
}

// Classify returns the tier for an already converted display speed.
// Bounds are closed on the low side: 33 mph is Elevated, 66 mph is High.
func Classify(display float64, useMPH bool) Tier {
	elevated, high := elevatedMPS, highMPS
	if useMPH {
		elevated, high = elevatedMPH, highMPH
	}

	switch {
	case display < elevated:
		return Normal
	case display < high:
		return Elevated
	default:
		return High
	}
}

// FromKnots converts an NMEA speed over ground to m/s.
func FromKnots(knots float64) float64 {
	return knots * KnotsToMPS
}
