// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/run_tracker/internal/tracker"
)

// MQTTProvider receives fixes published by the GPS producer.
type MQTTProvider struct {
	client mqtt.Client
	topic  string
	now    func() time.Time

	mu         sync.Mutex
	subscribed bool
}

// NewMQTTProvider subscribes through an already connected client.
func NewMQTTProvider(client mqtt.Client, topic string) *MQTTProvider {
	return &MQTTProvider{client: client, topic: topic, now: time.Now}
}

// Subscribe starts delivering samples from the fix topic.
func (p *MQTTProvider) Subscribe(_ context.Context, opts tracker.SubscribeOptions, handler func(tracker.LocationSample)) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.subscribed {
		return fmt.Errorf("gps: %s already subscribed", p.topic)
	}
	if !p.client.IsConnected() {
		return fmt.Errorf("%w: mqtt client not connected", tracker.ErrProviderUnavailable)
	}

	th := newThrottle(opts)
	token := p.client.Subscribe(p.topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var f Fix
		if err := json.Unmarshal(msg.Payload(), &f); err != nil {
			log.Printf("gps: fix unmarshal error: %v", err)
			return
		}
		if !f.Valid() {
			return
		}
		s := f.Sample()
		if th.allow(s, p.now()) {
			handler(s)
		}
	})
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("%w: subscribe %s: %v", tracker.ErrProviderUnavailable, p.topic, token.Error())
	}

	p.subscribed = true
	log.Printf("gps: subscribed to %s", p.topic)
	return nil
}

// Unsubscribe stops delivery.
func (p *MQTTProvider) Unsubscribe() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.subscribed {
		return nil
	}
	p.subscribed = false

	token := p.client.Unsubscribe(p.topic)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("gps: unsubscribe %s: %w", p.topic, token.Error())
	}
	log.Printf("gps: unsubscribed from %s", p.topic)
	return nil
}
