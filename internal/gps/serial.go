// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	serial "github.com/jacobsa/go-serial/serial"

	"github.com/relabs-tech/run_tracker/internal/tracker"
)

// SerialOptions returns the port settings used for the GPS UART.
func SerialOptions(port string, baud int) serial.OpenOptions {
	return serial.OpenOptions{
		PortName:              port,
		BaudRate:              uint(baud),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}
}

// SerialProvider reads RMC sentences from a GPS receiver on a serial port.
type SerialProvider struct {
	opts serial.OpenOptions
	open func(serial.OpenOptions) (io.ReadWriteCloser, error)
	now  func() time.Time

	mu   sync.Mutex
	port io.ReadWriteCloser
	sub  *serialSub
}

// serialSub gates delivery for one subscription. A blocking tty read does
// not return on Close, so the reader may outlive Unsubscribe; once stopped
// it never reaches the handler again.
type serialSub struct {
	mu      sync.Mutex
	stopped bool
	handler func(tracker.LocationSample)
}

func (s *serialSub) deliver(sample tracker.LocationSample) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		s.handler(sample)
	}
}

func (s *serialSub) stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
}

// NewSerialProvider creates a provider for the given port and baud rate.
func NewSerialProvider(port string, baud int) *SerialProvider {
	return &SerialProvider{
		opts: SerialOptions(port, baud),
		open: serial.Open,
		now:  time.Now,
	}
}

// Subscribe opens the port and starts delivering samples. handler is
// called from the reader goroutine and must not block.
func (p *SerialProvider) Subscribe(ctx context.Context, opts tracker.SubscribeOptions, handler func(tracker.LocationSample)) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.port != nil {
		return fmt.Errorf("gps: %s already subscribed", p.opts.PortName)
	}

	port, err := p.open(p.opts)
	if err != nil {
		if errors.Is(err, os.ErrPermission) {
			return fmt.Errorf("%w: %v", tracker.ErrPermissionDenied, err)
		}
		return fmt.Errorf("%w: open %s: %v", tracker.ErrProviderUnavailable, p.opts.PortName, err)
	}
	log.Printf("gps: serial port opened on %s at %d baud", p.opts.PortName, p.opts.BaudRate)

	sub := &serialSub{handler: handler}
	p.port, p.sub = port, sub
	go func() {
		err := readFixes(ctx, port, newThrottle(opts), p.now, sub.deliver)
		if err != nil && !errors.Is(err, context.Canceled) {
			sub.mu.Lock()
			stopped := sub.stopped
			sub.mu.Unlock()
			if !stopped {
				log.Printf("gps: read loop stopped: %v", err)
			}
		}
	}()
	return nil
}

// Unsubscribe stops delivery and closes the port. It does not wait for the
// reader goroutine, which exits when its pending read returns.
func (p *SerialProvider) Unsubscribe() error {
	p.mu.Lock()
	port, sub := p.port, p.sub
	p.port, p.sub = nil, nil
	p.mu.Unlock()

	if port == nil {
		return nil
	}
	sub.stop()
	err := port.Close()
	log.Printf("gps: serial port %s closed", p.opts.PortName)
	return err
}

// readFixes parses NMEA lines from r until it fails or ctx ends. Valid RMC
// fixes that get through the throttle go to handler.
func readFixes(ctx context.Context, r io.Reader, th *throttle, now func() time.Time, handler func(tracker.LocationSample)) error {
	reader := bufio.NewReader(r)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			fix, ok, perr := ParseRMC(line)
			// noisy receivers emit partial sentences; skip them quietly
			if perr == nil && ok && fix.Valid() {
				s := fix.Sample()
				if th.allow(s, now()) {
					handler(s)
				}
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
				return nil
			}
			return err
		}
	}
}
