// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"io"

	"github.com/relabs-tech/run_tracker/internal/panel"
	"github.com/relabs-tech/run_tracker/internal/tracker"
)

// ConsoleSink prints one line per screen.
type ConsoleSink struct {
	w io.Writer
}

func NewConsoleSink(w io.Writer) *ConsoleSink {
	return &ConsoleSink{w: w}
}

func (c *ConsoleSink) Show(s panel.Screen) error {
	_, err := io.WriteString(c.w, FormatScreen(s)+"\n")
	return err
}

// FormatScreen renders a screen as a single console line.
func FormatScreen(s panel.Screen) string {
	status := "RUN"
	if s.Paused {
		status = "PAUSE"
	}
	if s.DevMode {
		status += "+DEV"
	}

	loc := "lat=?          lon=?"
	switch {
	case s.LocationText == tracker.PermissionDeniedText:
		loc = "location permission denied"
	case s.HaveFix:
		loc = fmt.Sprintf("lat=%.6f lon=%.6f", s.Latitude, s.Longitude)
	}

	line := fmt.Sprintf("[TRK %-9s] t=%5ds  %s  speed=%7.3f %-3s (%s)",
		status, s.ElapsedSeconds, loc, s.Speed, s.Unit, s.Tier)
	if s.Notice != "" {
		line += "  <" + s.Notice + ">"
	}
	return line
}
