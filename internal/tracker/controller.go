// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package tracker turns location samples and timer ticks into the state
// shown on the tracker screen.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/relabs-tech/run_tracker/internal/speed"
	"github.com/relabs-tech/run_tracker/internal/timer"
)

// PermissionDeniedText replaces the location line when the provider
// refuses access.
const PermissionDeniedText = "Location permission denied."

// DevSample is substituted for every real sample while developer mode is on.
var DevSample = LocationSample{
	Latitude:  42.3505,
	Longitude: -71.1076,
	SpeedMPS:  4.4704,
}

// Modes holds the user-controlled flags.
type Modes struct {
	UseMPH  bool
	DevMode bool
	Paused  bool
}

// DisplayState is everything a renderer needs from the controller.
type DisplayState struct {
	HaveFix        bool       `json:"have_fix"`
	Latitude       float64    `json:"lat"`
	Longitude      float64    `json:"lon"`
	LocationText   string     `json:"location_text"`
	Speed          float64    `json:"speed"`
	Unit           speed.Unit `json:"unit"`
	Tier           speed.Tier `json:"tier"`
	ElapsedSeconds int64      `json:"elapsed_sec"`
	Paused         bool       `json:"paused"`
	DevMode        bool       `json:"dev_mode"`
}

// Controller owns the timer and mode flags. It is driven from a single
// goroutine and does no locking of its own.
type Controller struct {
	provider LocationProvider
	deliver  func(LocationSample)
	opts     SubscribeOptions
	timer    *timer.ElapsedTimer
	modes    Modes
	state    DisplayState

	ctx        context.Context
	subscribed bool
	denied     bool
}

// NewController creates a controller. deliver is the handler given to the
// provider; it must route samples back to OnSample on the owning goroutine.
func NewController(provider LocationProvider, deliver func(LocationSample), clock timer.Clock, modes Modes) *Controller {
	c := &Controller{
		provider: provider,
		deliver:  deliver,
		opts: SubscribeOptions{
			MinInterval: DefaultMinInterval,
			MinDistance: DefaultMinDistance,
		},
		timer: timer.New(clock),
		modes: Modes{UseMPH: modes.UseMPH, DevMode: modes.DevMode},
	}
	_, c.state.Unit = speed.Convert(0, c.modes.UseMPH)
	c.syncModes()
	return c
}

// SetSubscribeOptions overrides the update request used on the next
// subscribe.
func (c *Controller) SetSubscribeOptions(opts SubscribeOptions) {
	c.opts = opts
}

// Start runs the timer and subscribes to the provider. Provider failures
// are handled here: permission denial is shown on screen, anything else is
// logged and the screen simply gets no location updates.
func (c *Controller) Start(ctx context.Context) error {
	if err := c.timer.Start(); err != nil {
		return fmt.Errorf("start tracking: %w", err)
	}
	c.ctx = ctx
	c.subscribe()
	c.state.ElapsedSeconds = c.timer.Elapsed()
	return nil
}

// Stop releases the provider subscription.
func (c *Controller) Stop() {
	c.unsubscribe()
}

// State returns the current display state.
func (c *Controller) State() DisplayState {
	return c.state
}

// Modes returns the current flags.
func (c *Controller) Modes() Modes {
	return c.modes
}

// OnSample folds a new location into the display state. Samples arriving
// while paused are dropped and the previous state is returned.
func (c *Controller) OnSample(s LocationSample) DisplayState {
	if c.modes.Paused {
		return c.state
	}
	if c.modes.DevMode {
		s = DevSample
	}

	v, unit := speed.Convert(s.SpeedMPS, c.modes.UseMPH)

	c.state.HaveFix = true
	c.state.Latitude = s.Latitude
	c.state.Longitude = s.Longitude
	c.state.LocationText = fmt.Sprintf("Latitude: %.8f°\nLongitude: %.8f°", s.Latitude, s.Longitude)
	c.state.Speed = v
	c.state.Unit = unit
	c.state.Tier = speed.Classify(v, c.modes.UseMPH)
	c.state.ElapsedSeconds = c.timer.Elapsed()
	return c.state
}

// OnTick refreshes the elapsed time only.
func (c *Controller) OnTick() DisplayState {
	if secs, err := c.timer.Tick(); err == nil {
		c.state.ElapsedSeconds = secs
	}
	return c.state
}

// SetPaused pauses or resumes the timer and the location subscription.
// Setting the current value again does nothing.
func (c *Controller) SetPaused(paused bool) error {
	if paused == c.modes.Paused {
		return nil
	}

	if paused {
		if err := c.timer.Pause(); err != nil {
			return fmt.Errorf("pause tracking: %w", err)
		}
		c.unsubscribe()
	} else {
		if err := c.timer.Resume(); err != nil {
			return fmt.Errorf("resume tracking: %w", err)
		}
		c.subscribe()
	}

	c.modes.Paused = paused
	c.syncModes()
	c.state.ElapsedSeconds = c.timer.Elapsed()
	return nil
}

// SetUnit selects mph (true) or m/s (false) for the next sample.
func (c *Controller) SetUnit(useMPH bool) {
	c.modes.UseMPH = useMPH
}

// SetDevMode enables the synthetic sample for the next sample.
func (c *Controller) SetDevMode(on bool) {
	c.modes.DevMode = on
	c.syncModes()
}

// Reset restarts the elapsed time at zero. Location and speed stay as they
// are. A paused tracker is resumed since the timer restarts running.
func (c *Controller) Reset() {
	c.timer.Reset()
	if c.modes.Paused {
		c.modes.Paused = false
		c.subscribe()
		c.syncModes()
	}
	c.state.ElapsedSeconds = 0
}

func (c *Controller) syncModes() {
	c.state.Paused = c.modes.Paused
	c.state.DevMode = c.modes.DevMode
}

func (c *Controller) subscribe() {
	if c.subscribed || c.denied || c.provider == nil {
		return
	}
	ctx := c.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	err := c.provider.Subscribe(ctx, c.opts, c.deliver)
	switch {
	case err == nil:
		c.subscribed = true
	case errors.Is(err, ErrPermissionDenied):
		c.denied = true
		c.state.LocationText = PermissionDeniedText
		log.Printf("tracker: %v; location tracking disabled", err)
	default:
		log.Printf("tracker: location updates not started: %v", err)
	}
}

func (c *Controller) unsubscribe() {
	if !c.subscribed {
		return
	}
	if err := c.provider.Unsubscribe(); err != nil {
		log.Printf("tracker: unsubscribe error: %v", err)
	}
	c.subscribed = false
}
