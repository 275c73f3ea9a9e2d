// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/run_tracker/internal/panel"
	"github.com/relabs-tech/run_tracker/internal/speed"
	"github.com/relabs-tech/run_tracker/internal/timer"
	"github.com/relabs-tech/run_tracker/internal/tracker"
)

// chanProvider hands its handler to the test so samples can be pushed
// from another goroutine, like a real receiver would.
type chanProvider struct {
	mu      sync.Mutex
	handler func(tracker.LocationSample)
	active  bool
}

func (p *chanProvider) Subscribe(_ context.Context, _ tracker.SubscribeOptions, h func(tracker.LocationSample)) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handler = h
	p.active = true
	return nil
}

func (p *chanProvider) Unsubscribe() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active = false
	return nil
}

func (p *chanProvider) isActive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

func (p *chanProvider) push(s tracker.LocationSample) {
	p.mu.Lock()
	h := p.handler
	p.mu.Unlock()
	h(s)
}

// recorder keeps every screen it is shown.
type recorder struct {
	mu      sync.Mutex
	screens []panel.Screen
}

func (r *recorder) Show(s panel.Screen) error {
	r.mu.Lock()
	r.screens = append(r.screens, s)
	r.mu.Unlock()
	return nil
}

func (r *recorder) last() (panel.Screen, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.screens) == 0 {
		return panel.Screen{}, false
	}
	return r.screens[len(r.screens)-1], true
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.screens)
}

func (r *recorder) waitFor(t *testing.T, cond func(panel.Screen) bool) panel.Screen {
	t.Helper()
	var got panel.Screen
	require.Eventually(t, func() bool {
		s, ok := r.last()
		if ok && cond(s) {
			got = s
			return true
		}
		return false
	}, 2*time.Second, 5*time.Millisecond)
	return got
}

func startLoop(t *testing.T, tick time.Duration) (*Loop, *chanProvider, *recorder) {
	t.Helper()
	p := &chanProvider{}
	rec := &recorder{}
	loop := NewLoop(p, timer.SystemClock, tracker.Modes{UseMPH: true}, tick)
	loop.AddSink(rec)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- loop.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-errCh)
	})

	rec.waitFor(t, func(panel.Screen) bool { return true })
	return loop, p, rec
}

func TestLoopSampleReachesSinks(t *testing.T) {
	_, p, rec := startLoop(t, time.Hour)

	p.push(tracker.LocationSample{Latitude: 40.1, Longitude: -3.7, SpeedMPS: 30})
	s := rec.waitFor(t, func(s panel.Screen) bool { return s.HaveFix })

	assert.InDelta(t, 67.1, s.Speed, 0.01)
	assert.Equal(t, speed.High, s.Tier)
	assert.Equal(t, "red", s.Color)
}

func TestLoopCommands(t *testing.T) {
	loop, p, rec := startLoop(t, time.Hour)

	loop.Submit(panel.Command{Action: panel.ActionPause})
	s := rec.waitFor(t, func(s panel.Screen) bool { return s.Paused })
	assert.Equal(t, "Resume", s.PauseButton)
	assert.Equal(t, "Timer paused", s.Notice)
	assert.False(t, p.isActive())

	loop.Submit(panel.Command{Action: panel.ActionPause})
	rec.waitFor(t, func(s panel.Screen) bool { return !s.Paused })
	assert.True(t, p.isActive())

	loop.Submit(panel.Command{Action: "bogus"})
	s = rec.waitFor(t, func(s panel.Screen) bool { return s.Notice != "" && s.Notice != "Timer resumed" })
	assert.Contains(t, s.Notice, "bogus")
}

func TestLoopTicksRefreshElapsed(t *testing.T) {
	_, _, rec := startLoop(t, 20*time.Millisecond)

	before := rec.count()
	require.Eventually(t, func() bool {
		return rec.count() >= before+3
	}, 2*time.Second, 10*time.Millisecond)
}

func TestLoopPausedStopsTicks(t *testing.T) {
	loop, _, rec := startLoop(t, 10*time.Millisecond)

	loop.Submit(panel.Command{Action: panel.ActionPause})
	rec.waitFor(t, func(s panel.Screen) bool { return s.Paused })

	n := rec.count()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, n, rec.count())
}

func TestDeliverNeverBlocks(t *testing.T) {
	loop := NewLoop(&chanProvider{}, timer.SystemClock, tracker.Modes{}, time.Second)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			loop.Deliver(tracker.LocationSample{})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Deliver blocked without a running loop")
	}
}

func TestLoopRunsOnce(t *testing.T) {
	loop := NewLoop(&chanProvider{}, timer.SystemClock, tracker.Modes{}, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, loop.Run(ctx))
	assert.ErrorIs(t, loop.Run(ctx), ErrLoopRan)

	// Submit must not block once the loop is gone.
	loop.Submit(panel.Command{Action: panel.ActionHelp})
}
