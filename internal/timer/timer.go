// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package timer implements the elapsed-time counter shown on the tracker.
package timer

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidState is returned (wrapped in *InvalidStateError) when an
// operation is called in a state that does not allow it.
var ErrInvalidState = errors.New("invalid timer state")

// State of the timer.
type State int

const (
	Stopped State = iota
	Running
	Paused
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Running:
		return "running"
	case Paused:
		return "paused"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// InvalidStateError records which operation was rejected and why.
type InvalidStateError struct {
	Op    string
	State State
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("timer: %s not allowed while %s", e.Op, e.State)
}

func (e *InvalidStateError) Unwrap() error { return ErrInvalidState }

// Clock is the time source. Tests swap in a manual clock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads the wall clock.
var SystemClock Clock = systemClock{}

// ElapsedTimer counts whole seconds since the last start or reset,
// excluding time spent paused. It is not safe for concurrent use; the
// tracker loop owns it.
//
// Pausing records the elapsed duration; resuming moves the start instant
// forward so that now-start equals that duration again.
type ElapsedTimer struct {
	clock         Clock
	state         State
	start         time.Time
	pausedElapsed time.Duration
}

// New returns a stopped timer reading time from clock (SystemClock if nil).
func New(clock Clock) *ElapsedTimer {
	if clock == nil {
		clock = SystemClock
	}
	return &ElapsedTimer{clock: clock}
}

// State returns the current state.
func (t *ElapsedTimer) State() State { return t.state }

// Start begins counting from zero. Only valid when stopped.
func (t *ElapsedTimer) Start() error {
	if t.state != Stopped {
		return &InvalidStateError{Op: "start", State: t.state}
	}
	t.start = t.clock.Now()
	t.pausedElapsed = 0
	t.state = Running
	return nil
}

// Tick returns the elapsed whole seconds. Only valid while running.
func (t *ElapsedTimer) Tick() (int64, error) {
	if t.state != Running {
		return 0, &InvalidStateError{Op: "tick", State: t.state}
	}
	return seconds(t.clock.Now().Sub(t.start)), nil
}

// Pause freezes the counter. Only valid while running.
func (t *ElapsedTimer) Pause() error {
	if t.state != Running {
		return &InvalidStateError{Op: "pause", State: t.state}
	}
	t.pausedElapsed = t.clock.Now().Sub(t.start)
	t.state = Paused
	return nil
}

// Resume continues counting from the frozen value. Only valid while paused.
func (t *ElapsedTimer) Resume() error {
	if t.state != Paused {
		return &InvalidStateError{Op: "resume", State: t.state}
	}
	t.start = t.clock.Now().Add(-t.pausedElapsed)
	t.state = Running
	return nil
}

// Reset restarts the counter at zero from any state and leaves it running.
func (t *ElapsedTimer) Reset() {
	t.start = t.clock.Now()
	t.pausedElapsed = 0
	t.state = Running
}

// Elapsed reports the value to display without a state check: live while
// running, frozen while paused, zero before the first start.
func (t *ElapsedTimer) Elapsed() int64 {
	switch t.state {
	case Running:
		return seconds(t.clock.Now().Sub(t.start))
	case Paused:
		return seconds(t.pausedElapsed)
	default:
		return 0
	}
}

// seconds truncates toward zero like integer millisecond division.
func seconds(d time.Duration) int64 {
	return d.Milliseconds() / 1000
}
