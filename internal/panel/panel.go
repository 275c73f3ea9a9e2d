// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package panel maps user commands onto the tracking controller and builds
// the screen every renderer draws.
package panel

import (
	"fmt"

	"github.com/relabs-tech/run_tracker/internal/tracker"
)

// Font slider range and default position.
const (
	FontMin     = 0
	FontMax     = 100
	FontDefault = 40
	fontOffset  = 10
)

// HelpText is shown for the help command.
const HelpText = "Welcome to Run Tracker!\n\n" +
	"• This app tracks your location, speed, and elapsed time during your run.\n" +
	"• Use the reset button to start the timer over.\n" +
	"• Toggle between mph and m/s with the unit button.\n" +
	"• Pause or resume tracking with the pause button.\n\n" +
	"Enjoy your run and stay safe!"

// Action names accepted from the web page and MQTT.
const (
	ActionReset      = "reset"
	ActionToggleUnit = "toggle_unit"
	ActionPause      = "pause"
	ActionDevMode    = "dev_mode"
	ActionFontSize   = "font_size"
	ActionHelp       = "help"
)

// Command is one user action.
type Command struct {
	Action   string `json:"action"`
	On       bool   `json:"on,omitempty"`       // dev_mode
	Position int    `json:"position,omitempty"` // font_size, 0-100
}

// Screen is the full rendered view: controller state plus control labels.
type Screen struct {
	tracker.DisplayState

	LocationLine string `json:"location_line"`
	SpeedText    string `json:"speed_text"`
	ElapsedText  string `json:"elapsed_text"`
	Color        string `json:"color"`
	UnitButton   string `json:"unit_button"`
	PauseButton  string `json:"pause_button"`
	FontPosition int    `json:"font_position"`
	FontSize     int    `json:"font_size"`

	// Set only on the screen produced by the command that caused them.
	Notice string `json:"notice,omitempty"`
	Help   string `json:"help,omitempty"`
}

// Panel holds the control state that is not part of the controller.
type Panel struct {
	ctrl         *tracker.Controller
	fontPosition int
}

// New wraps ctrl with the controls at their defaults.
func New(ctrl *tracker.Controller) *Panel {
	return &Panel{ctrl: ctrl, fontPosition: FontDefault}
}

// FontSize maps a slider position to a text size.
func FontSize(position int) int {
	return clampFont(position) + fontOffset
}

func clampFont(position int) int {
	if position < FontMin {
		return FontMin
	}
	if position > FontMax {
		return FontMax
	}
	return position
}

// Apply executes cmd and returns the resulting screen.
func (p *Panel) Apply(cmd Command) (Screen, error) {
	var notice, help string

	switch cmd.Action {
	case ActionReset:
		p.ctrl.Reset()
		p.fontPosition = FontDefault
		notice = "Reset"

	case ActionToggleUnit:
		p.ctrl.SetUnit(!p.ctrl.Modes().UseMPH)
		notice = "Speed unit changed"

	case ActionPause:
		paused := !p.ctrl.Modes().Paused
		if err := p.ctrl.SetPaused(paused); err != nil {
			return p.View(), err
		}
		notice = "Timer resumed"
		if paused {
			notice = "Timer paused"
		}

	case ActionDevMode:
		p.ctrl.SetDevMode(cmd.On)
		notice = "Dev Mode Disabled"
		if cmd.On {
			notice = "Dev Mode Enabled"
		}

	case ActionFontSize:
		p.fontPosition = clampFont(cmd.Position)

	case ActionHelp:
		help = HelpText

	default:
		return p.View(), fmt.Errorf("unknown action %q", cmd.Action)
	}

	s := p.View()
	s.Notice = notice
	s.Help = help
	return s, nil
}

// View builds the screen for the current state.
func (p *Panel) View() Screen {
	st := p.ctrl.State()
	modes := p.ctrl.Modes()

	s := Screen{
		DisplayState: st,
		ElapsedText:  fmt.Sprintf("Elapsed Time: %d sec", st.ElapsedSeconds),
		Color:        st.Tier.Color(),
		UnitButton:   "Switch to mph",
		PauseButton:  "Pause",
		FontPosition: p.fontPosition,
		FontSize:     FontSize(p.fontPosition),
	}
	if modes.UseMPH {
		s.UnitButton = "Switch to m/s"
	}
	if modes.Paused {
		s.PauseButton = "Resume"
	}

	s.LocationLine = st.LocationText
	if s.LocationLine == "" {
		s.LocationLine = "Waiting for location..."
	}
	if st.HaveFix {
		s.SpeedText = fmt.Sprintf("Speed: %.3f %s", st.Speed, st.Unit)
	} else {
		s.SpeedText = "Speed: waiting for GPS"
	}
	return s
}
