// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/run_tracker/internal/tracker"
)

func TestMockProviderAt(t *testing.T) {
	m := NewMockProvider(time.Second)

	s := m.At(0)
	assert.Equal(t, m.Center.Latitude, s.Latitude)
	assert.InDelta(t, 4, s.SpeedMPS, 1e-9)

	for i := 0; i < 300; i += 7 {
		s := m.At(time.Duration(i) * time.Second)
		assert.InDelta(t, m.Center.Latitude, s.Latitude, 0.003)
		assert.GreaterOrEqual(t, s.SpeedMPS, 1.0)
		assert.LessOrEqual(t, s.SpeedMPS, 7.0)
	}
}

func TestMockProviderEmitsUntilUnsubscribe(t *testing.T) {
	m := NewMockProvider(5 * time.Millisecond)

	var n atomic.Int32
	require.NoError(t, m.Subscribe(context.Background(), tracker.SubscribeOptions{}, func(tracker.LocationSample) {
		n.Add(1)
	}))
	assert.Eventually(t, func() bool { return n.Load() >= 3 }, time.Second, 5*time.Millisecond)

	require.NoError(t, m.Unsubscribe())
	stopped := n.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, n.Load())
}
