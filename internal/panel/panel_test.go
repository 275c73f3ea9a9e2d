// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package panel

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/run_tracker/internal/speed"
	"github.com/relabs-tech/run_tracker/internal/timer"
	"github.com/relabs-tech/run_tracker/internal/tracker"
)

type nopProvider struct{}

func (nopProvider) Subscribe(context.Context, tracker.SubscribeOptions, func(tracker.LocationSample)) error {
	return nil
}

func (nopProvider) Unsubscribe() error { return nil }

func newPanel(t *testing.T) (*Panel, *tracker.Controller, *timer.ManualClock) {
	t.Helper()
	clock := timer.NewManualClock(time.Date(2026, 6, 1, 6, 0, 0, 0, time.UTC))
	ctrl := tracker.NewController(nopProvider{}, func(tracker.LocationSample) {}, clock, tracker.Modes{UseMPH: true})
	require.NoError(t, ctrl.Start(context.Background()))
	return New(ctrl), ctrl, clock
}

func TestInitialView(t *testing.T) {
	p, _, _ := newPanel(t)
	s := p.View()

	assert.Equal(t, "Pause", s.PauseButton)
	assert.Equal(t, "Switch to m/s", s.UnitButton)
	assert.Equal(t, FontDefault, s.FontPosition)
	assert.Equal(t, 50, s.FontSize)
	assert.Equal(t, "Elapsed Time: 0 sec", s.ElapsedText)
	assert.Equal(t, "Waiting for location...", s.LocationLine)
	assert.Equal(t, "green", s.Color)
}

func TestToggleUnit(t *testing.T) {
	p, ctrl, _ := newPanel(t)

	s, err := p.Apply(Command{Action: ActionToggleUnit})
	require.NoError(t, err)
	assert.Equal(t, "Switch to mph", s.UnitButton)
	assert.Equal(t, "Speed unit changed", s.Notice)

	ctrl.OnSample(tracker.LocationSample{SpeedMPS: 2})
	s = p.View()
	assert.Equal(t, "Speed: 2.000 m/s", s.SpeedText)
	assert.Equal(t, speed.MPS, s.Unit)

	s, err = p.Apply(Command{Action: ActionToggleUnit})
	require.NoError(t, err)
	assert.Equal(t, "Switch to m/s", s.UnitButton)
}

func TestPauseResumeLabels(t *testing.T) {
	p, _, _ := newPanel(t)

	s, err := p.Apply(Command{Action: ActionPause})
	require.NoError(t, err)
	assert.Equal(t, "Resume", s.PauseButton)
	assert.Equal(t, "Timer paused", s.Notice)
	assert.True(t, s.Paused)

	s, err = p.Apply(Command{Action: ActionPause})
	require.NoError(t, err)
	assert.Equal(t, "Pause", s.PauseButton)
	assert.Equal(t, "Timer resumed", s.Notice)
}

func TestFontSizeClampsAndMaps(t *testing.T) {
	p, _, _ := newPanel(t)

	s, err := p.Apply(Command{Action: ActionFontSize, Position: 75})
	require.NoError(t, err)
	assert.Equal(t, 85, s.FontSize)

	s, _ = p.Apply(Command{Action: ActionFontSize, Position: 400})
	assert.Equal(t, FontMax, s.FontPosition)
	assert.Equal(t, 110, s.FontSize)

	s, _ = p.Apply(Command{Action: ActionFontSize, Position: -5})
	assert.Equal(t, 10, s.FontSize)
}

func TestResetRestoresDefaults(t *testing.T) {
	p, _, clock := newPanel(t)
	_, _ = p.Apply(Command{Action: ActionFontSize, Position: 90})
	_, _ = p.Apply(Command{Action: ActionPause})
	clock.Advance(30 * time.Second)

	s, err := p.Apply(Command{Action: ActionReset})
	require.NoError(t, err)
	assert.Equal(t, "Reset", s.Notice)
	assert.Equal(t, FontDefault, s.FontPosition)
	assert.Equal(t, "Pause", s.PauseButton)
	assert.Equal(t, "Elapsed Time: 0 sec", s.ElapsedText)
}

func TestDevModeAndHelp(t *testing.T) {
	p, ctrl, _ := newPanel(t)

	s, err := p.Apply(Command{Action: ActionDevMode, On: true})
	require.NoError(t, err)
	assert.Equal(t, "Dev Mode Enabled", s.Notice)
	assert.True(t, s.DevMode)

	ctrl.OnSample(tracker.LocationSample{Latitude: 1, Longitude: 1, SpeedMPS: 50})
	s = p.View()
	assert.Equal(t, 42.3505, s.Latitude)

	before := p.View()
	s, err = p.Apply(Command{Action: ActionHelp})
	require.NoError(t, err)
	assert.Equal(t, HelpText, s.Help)
	s.Help = ""
	assert.Equal(t, before, s)

	s, _ = p.Apply(Command{Action: ActionDevMode, On: false})
	assert.Equal(t, "Dev Mode Disabled", s.Notice)
}

func TestUnknownAction(t *testing.T) {
	p, _, _ := newPanel(t)
	_, err := p.Apply(Command{Action: "explode"})
	assert.ErrorContains(t, err, "explode")
}

func TestScreenJSON(t *testing.T) {
	p, ctrl, _ := newPanel(t)
	ctrl.OnSample(tracker.LocationSample{Latitude: 48.1, Longitude: 11.5, SpeedMPS: 30})

	b, err := json.Marshal(p.View())
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, "high", m["tier"])
	assert.Equal(t, "mph", m["unit"])
	assert.Equal(t, "red", m["color"])
	assert.NotContains(t, m, "notice")

	var back Screen
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, p.View(), back)
}
