// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package tracker

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrPermissionDenied means the location source cannot be opened by
	// this process. Tracking does not start and is not retried.
	ErrPermissionDenied = errors.New("location permission denied")

	// ErrProviderUnavailable means the location source could not be
	// started for any other reason.
	ErrProviderUnavailable = errors.New("location provider unavailable")
)

// Update request defaults: at most one sample per second unless the
// receiver moved at least one metre.
const (
	DefaultMinInterval = time.Second
	DefaultMinDistance = 1.0
)

// LocationSample is a single fix handed to the controller.
type LocationSample struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	SpeedMPS  float64 `json:"speed_mps"`
}

// SubscribeOptions controls how often a provider delivers samples.
type SubscribeOptions struct {
	MinInterval time.Duration
	MinDistance float64 // metres
}

// LocationProvider delivers samples to a handler until Unsubscribe.
// Handlers may be called from the provider's own goroutine; callers that
// need serialization must hand the sample off to their event loop.
type LocationProvider interface {
	Subscribe(ctx context.Context, opts SubscribeOptions, handler func(LocationSample)) error
	Unsubscribe() error
}
