// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/relabs-tech/run_tracker/internal/tracker"
)

// MockProvider generates a jogger circling a park, for running the tracker
// without a receiver.
type MockProvider struct {
	Interval time.Duration
	Center   tracker.LocationSample

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	start  time.Time
}

// NewMockProvider emits one sample per interval.
func NewMockProvider(interval time.Duration) *MockProvider {
	return &MockProvider{
		Interval: interval,
		Center:   tracker.LocationSample{Latitude: 52.5145, Longitude: 13.3501},
		start:    time.Now(),
	}
}

// Subscribe starts the generator.
func (m *MockProvider) Subscribe(ctx context.Context, _ tracker.SubscribeOptions, handler func(tracker.LocationSample)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})

	go func(done chan struct{}) {
		defer close(done)
		ticker := time.NewTicker(m.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case t := <-ticker.C:
				handler(m.At(t.Sub(m.start)))
			}
		}
	}(m.done)
	return nil
}

// Unsubscribe stops the generator.
func (m *MockProvider) Unsubscribe() error {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	return nil
}

// At returns the synthetic sample after elapsed time: a ~300 m circle with
// the pace drifting between a jog and a sprint.
func (m *MockProvider) At(elapsed time.Duration) tracker.LocationSample {
	s := elapsed.Seconds()
	angle := s / 120 * 2 * math.Pi

	return tracker.LocationSample{
		Latitude:  m.Center.Latitude + 0.0027*math.Sin(angle),
		Longitude: m.Center.Longitude + 0.0044*math.Cos(angle),
		SpeedMPS:  4 + 3*math.Sin(s*0.05),
	}
}
