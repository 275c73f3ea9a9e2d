// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"log"
	"sync/atomic"
	"time"

	"github.com/relabs-tech/run_tracker/internal/panel"
	"github.com/relabs-tech/run_tracker/internal/timer"
	"github.com/relabs-tech/run_tracker/internal/tracker"
)

// Sink receives every screen the loop produces.
type Sink interface {
	Show(panel.Screen) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(panel.Screen) error

func (f SinkFunc) Show(s panel.Screen) error { return f(s) }

// Loop is the single goroutine that owns the controller. Provider
// callbacks, ticks and user commands are all funneled through it.
type Loop struct {
	ctrl  *tracker.Controller
	panel *panel.Panel
	tick  time.Duration
	sinks []Sink

	samples  chan tracker.LocationSample
	commands chan panel.Command
	done     chan struct{}
	ran      atomic.Bool
}

// ErrLoopRan is returned by Run on a Loop that has already been run.
var ErrLoopRan = errors.New("loop: already run")

// NewLoop builds the controller around provider. tick is the elapsed-time
// refresh cadence, normally one second.
func NewLoop(provider tracker.LocationProvider, clock timer.Clock, modes tracker.Modes, tick time.Duration) *Loop {
	l := &Loop{
		tick:     tick,
		samples:  make(chan tracker.LocationSample, 16),
		commands: make(chan panel.Command, 16),
		done:     make(chan struct{}),
	}
	l.ctrl = tracker.NewController(provider, l.Deliver, clock, modes)
	l.panel = panel.New(l.ctrl)
	return l
}

// SetSubscribeOptions sets the location update request. Call before Run.
func (l *Loop) SetSubscribeOptions(opts tracker.SubscribeOptions) {
	l.ctrl.SetSubscribeOptions(opts)
}

// AddSink registers a renderer. Call before Run.
func (l *Loop) AddSink(s Sink) {
	l.sinks = append(l.sinks, s)
}

// Deliver hands a location sample to the loop. Safe from any goroutine.
// It never blocks: Unsubscribe runs on the loop and a provider may wait
// on its own callback there, so a full queue drops the sample instead.
func (l *Loop) Deliver(s tracker.LocationSample) {
	select {
	case l.samples <- s:
	default:
		log.Println("loop: sample queue full, dropping sample")
	}
}

// Submit hands a user command to the loop. Safe from any goroutine.
func (l *Loop) Submit(cmd panel.Command) {
	select {
	case l.commands <- cmd:
	case <-l.done:
	}
}

// Run processes events until ctx is cancelled. A Loop runs once.
func (l *Loop) Run(ctx context.Context) error {
	if !l.ran.CompareAndSwap(false, true) {
		return ErrLoopRan
	}
	defer close(l.done)

	if err := l.ctrl.Start(ctx); err != nil {
		return err
	}
	defer l.ctrl.Stop()

	var ticker *time.Ticker
	startTicker := func() {
		if ticker != nil {
			ticker.Stop()
		}
		ticker = time.NewTicker(l.tick)
	}
	stopTicker := func() {
		if ticker != nil {
			ticker.Stop()
			ticker = nil
		}
	}
	defer stopTicker()
	tickC := func() <-chan time.Time {
		if ticker == nil {
			return nil
		}
		return ticker.C
	}

	startTicker()
	l.show(l.panel.View())

	for {
		select {
		case <-ctx.Done():
			log.Println("loop: shutting down")
			return nil

		case <-tickC():
			l.ctrl.OnTick()
			l.show(l.panel.View())

		case s := <-l.samples:
			l.ctrl.OnSample(s)
			l.show(l.panel.View())

		case cmd := <-l.commands:
			screen, err := l.panel.Apply(cmd)
			if err != nil {
				log.Printf("loop: command %q failed: %v", cmd.Action, err)
				screen.Notice = err.Error()
			}

			// pausing drops the tick schedule; resume and reset re-anchor it
			switch {
			case l.ctrl.Modes().Paused:
				stopTicker()
			case cmd.Action == panel.ActionPause, cmd.Action == panel.ActionReset:
				startTicker()
			}
			l.show(screen)
		}
	}
}

func (l *Loop) show(s panel.Screen) {
	for _, sink := range l.sinks {
		if err := sink.Show(s); err != nil {
			log.Printf("loop: sink error: %v", err)
		}
	}
}
