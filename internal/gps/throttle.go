// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"math"
	"time"

	"github.com/relabs-tech/run_tracker/internal/tracker"
)

const earthRadiusMeters = 6371000.0

// DistanceMeters is the haversine distance between two samples.
func DistanceMeters(a, b tracker.LocationSample) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := lat2 - lat1
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

// throttle passes a sample once MinInterval has elapsed or the receiver
// moved at least MinDistance since the last passed sample.
type throttle struct {
	opts   tracker.SubscribeOptions
	last   tracker.LocationSample
	lastAt time.Time
	have   bool
}

func newThrottle(opts tracker.SubscribeOptions) *throttle {
	return &throttle{opts: opts}
}

func (t *throttle) allow(s tracker.LocationSample, now time.Time) bool {
	pass := !t.have ||
		now.Sub(t.lastAt) >= t.opts.MinInterval ||
		(t.opts.MinDistance > 0 && DistanceMeters(t.last, s) >= t.opts.MinDistance)
	if pass {
		t.last = s
		t.lastAt = now
		t.have = true
	}
	return pass
}
