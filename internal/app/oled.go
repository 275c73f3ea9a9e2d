// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"image"
	"log"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/run_tracker/internal/panel"
	"github.com/relabs-tech/run_tracker/internal/speed"
	"github.com/relabs-tech/run_tracker/internal/tracker"
)

const (
	oledWidth  = 128
	oledHeight = 64

	// Panel font sizes run 10..110; on a 64 px panel that becomes 3..33 pt.
	oledPointsPerSize = 0.3

	oledTopBaseline    = 11
	oledSpeedBaseline  = 44
	oledBottomBaseline = 62
)

// oledRenderer draws screens into 1-bit images. Faces are cached per
// font size since the slider only takes 101 values.
type oledRenderer struct {
	font  *opentype.Font
	faces map[int]font.Face
}

func newOLEDRenderer() (*oledRenderer, error) {
	f, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse speed font: %w", err)
	}
	return &oledRenderer{font: f, faces: map[int]font.Face{}}, nil
}

func (r *oledRenderer) face(size int) (font.Face, error) {
	if face, ok := r.faces[size]; ok {
		return face, nil
	}
	face, err := opentype.NewFace(r.font, &opentype.FaceOptions{
		Size:    float64(size) * oledPointsPerSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("speed font size %d: %w", size, err)
	}
	r.faces[size] = face
	return face, nil
}

func (r *oledRenderer) render(s panel.Screen) (*image1bit.VerticalLSB, error) {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, oledWidth, oledHeight))

	small := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}

	// Top line: elapsed time left, status right.
	small.Dot = fixed.P(0, oledTopBaseline)
	small.DrawString(fmt.Sprintf("T %ds", s.ElapsedSeconds))

	status := ""
	switch {
	case s.Paused:
		status = "PAUSED"
	case s.DevMode:
		status = "DEV"
	}
	if status != "" {
		w := small.MeasureString(status).Ceil()
		small.Dot = fixed.P(oledWidth-w, oledTopBaseline)
		small.DrawString(status)
	}

	// Speed in the slider-controlled font, unit in the small one.
	face, err := r.face(s.FontSize)
	if err != nil {
		return nil, err
	}
	big := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: face,
		Dot:  fixed.P(0, oledSpeedBaseline),
	}
	if s.HaveFix {
		big.DrawString(fmt.Sprintf("%.1f", s.Speed))
	} else {
		big.DrawString("--.-")
	}
	small.Dot = fixed.Point26_6{X: big.Dot.X + fixed.I(3), Y: fixed.I(oledSpeedBaseline)}
	small.DrawString(s.Unit.String())

	// Bottom line: position.
	small.Dot = fixed.P(0, oledBottomBaseline)
	switch {
	case s.LocationText == tracker.PermissionDeniedText:
		small.DrawString("GPS denied")
	case s.HaveFix:
		small.DrawString(fmt.Sprintf("%.4f %.4f", s.Latitude, s.Longitude))
	default:
		small.DrawString("Looking for sats")
	}

	switch s.Tier {
	case speed.Elevated:
		for x := 0; x < oledWidth; x++ {
			img.SetBit(x, oledSpeedBaseline+4, image1bit.On)
			img.SetBit(x, oledSpeedBaseline+5, image1bit.On)
		}
	case speed.High:
		for i := range img.Pix {
			img.Pix[i] = ^img.Pix[i]
		}
	}

	return img, nil
}

// OLEDSink drives an SSD1306 over I2C.
type OLEDSink struct {
	bus      i2c.BusCloser
	dev      *ssd1306.Dev
	renderer *oledRenderer
}

// OpenOLED initializes periph, opens busName ("" for the first bus) and
// shows the splash screen.
func OpenOLED(busName string) (*OLEDSink, error) {
	renderer, err := newOLEDRenderer()
	if err != nil {
		return nil, err
	}

	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("failed to open I2C bus: %w", err)
	}

	opts := ssd1306.DefaultOpts
	dev, err := ssd1306.NewI2C(bus, &opts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("failed to initialize display: %w", err)
	}
	log.Printf("display: initialized on I2C bus %q", busName)

	o := &OLEDSink{bus: bus, dev: dev, renderer: renderer}
	if err := o.splash(); err != nil {
		log.Printf("display: error showing splash: %v", err)
	}
	return o, nil
}

func (o *OLEDSink) Show(s panel.Screen) error {
	img, err := o.renderer.render(s)
	if err != nil {
		return err
	}
	return o.dev.Draw(o.dev.Bounds(), img, image.Point{})
}

// Close blanks the panel and releases the bus.
func (o *OLEDSink) Close() error {
	if err := o.dev.Halt(); err != nil {
		log.Printf("display: halt error: %v", err)
	}
	return o.bus.Close()
}

func (o *OLEDSink) splash() error {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, oledWidth, oledHeight))

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}

	drawer.Dot = fixed.P(24, 26)
	drawer.DrawString("Run Tracker")

	drawer.Dot = fixed.P(24, 43)
	drawer.DrawString("Looking for")

	drawer.Dot = fixed.P(50, 56)
	drawer.DrawString("sats")

	return o.dev.Draw(o.dev.Bounds(), img, image.Point{})
}
