// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package speed

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert(t *testing.T) {
	for _, raw := range []float64{0, 1, 4.4704, 14, 30, 123.456} {
		v, u := Convert(raw, true)
		assert.Equal(t, raw*2.23694, v)
		assert.Equal(t, MPH, u)

		v, u = Convert(raw, false)
		assert.Equal(t, raw, v)
		assert.Equal(t, MPS, u)
	}
}

func TestConvertPassesThroughInvalidInput(t *testing.T) {
	v, _ := Convert(-3, false)
	assert.Equal(t, -3.0, v)

	v, _ = Convert(math.NaN(), true)
	assert.True(t, math.IsNaN(v))
}

func TestClassifyMPH(t *testing.T) {
	cases := []struct {
		speed float64
		want  Tier
	}{
		{0, Normal},
		{32.999, Normal},
		{33.0, Elevated},
		{65.999, Elevated},
		{66.0, High},
		{120, High},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Classify(c.speed, true), "speed %v", c.speed)
	}
}

func TestClassifyMPS(t *testing.T) {
	cases := []struct {
		speed float64
		want  Tier
	}{
		{14.7522, Normal},
		{14.7523, Elevated},
		{29.5045, Elevated},
		{29.5046, High},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Classify(c.speed, false), "speed %v", c.speed)
	}
}

func TestConvertThenClassify(t *testing.T) {
	v, u := Convert(14.0, true)
	assert.InDelta(t, 31.317, v, 0.001)
	assert.Equal(t, Normal, Classify(v, u == MPH))

	v, u = Convert(30, true)
	assert.InDelta(t, 67.108, v, 0.001)
	assert.Equal(t, High, Classify(v, u == MPH))
}

func TestTierJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Tier Tier `json:"tier"`
	}{Elevated})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"tier":"elevated"}`, string(b))
	assert.Equal(t, "red", High.Color())
}

func TestTierJSONRoundTrip(t *testing.T) {
	type payload struct {
		Tier Tier `json:"tier"`
		Unit Unit `json:"unit"`
	}
	for _, tier := range []Tier{Normal, Elevated, High} {
		b, err := json.Marshal(payload{tier, MPH})
		require.NoError(t, err)

		var got payload
		require.NoError(t, json.Unmarshal(b, &got))
		assert.Equal(t, payload{tier, MPH}, got)
	}

	var p payload
	assert.ErrorContains(t, json.Unmarshal([]byte(`{"tier":"ludicrous"}`), &p), "ludicrous")
}

func TestFromKnots(t *testing.T) {
	assert.InDelta(t, 5.14444, FromKnots(10), 1e-9)
}
