// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package mqtttest provides an in-memory mqtt.Client for tests.
package mqtttest

import (
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Published is one message seen by the fake broker.
type Published struct {
	Topic    string
	Retained bool
	Payload  []byte
}

// Client routes Publish calls straight to matching Subscribe callbacks.
// Methods not overridden here panic through the nil embedded interface.
type Client struct {
	mqtt.Client

	mu        sync.Mutex
	connected bool
	subs      map[string]mqtt.MessageHandler
	published []Published

	// SubscribeErr, when set, is returned by every Subscribe token.
	SubscribeErr error
}

// NewClient returns a connected fake client.
func NewClient() *Client {
	return &Client{connected: true, subs: map[string]mqtt.MessageHandler{}}
}

func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// SetConnected flips the connection flag.
func (c *Client) SetConnected(on bool) {
	c.mu.Lock()
	c.connected = on
	c.mu.Unlock()
}

func (c *Client) Disconnect(uint) { c.SetConnected(false) }

func (c *Client) Subscribe(topic string, _ byte, cb mqtt.MessageHandler) mqtt.Token {
	if c.SubscribeErr != nil {
		return &Token{err: c.SubscribeErr}
	}
	c.mu.Lock()
	c.subs[topic] = cb
	c.mu.Unlock()
	return &Token{}
}

func (c *Client) Unsubscribe(topics ...string) mqtt.Token {
	c.mu.Lock()
	for _, t := range topics {
		delete(c.subs, t)
	}
	c.mu.Unlock()
	return &Token{}
}

func (c *Client) Publish(topic string, _ byte, retained bool, payload interface{}) mqtt.Token {
	var b []byte
	switch p := payload.(type) {
	case []byte:
		b = p
	case string:
		b = []byte(p)
	}

	c.mu.Lock()
	c.published = append(c.published, Published{Topic: topic, Retained: retained, Payload: b})
	cb := c.subs[topic]
	c.mu.Unlock()

	if cb != nil {
		cb(c, &Message{topic: topic, payload: b, retained: retained})
	}
	return &Token{}
}

// Subscribed reports whether topic has a live subscription.
func (c *Client) Subscribed(topic string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.subs[topic]
	return ok
}

// Published returns a copy of everything published so far.
func (c *Client) Published() []Published {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Published(nil), c.published...)
}

// Token is an already completed mqtt.Token.
type Token struct {
	err error
}

func (t *Token) Wait() bool                     { return true }
func (t *Token) WaitTimeout(time.Duration) bool { return true }
func (t *Token) Error() error                   { return t.err }

func (t *Token) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// Message is a minimal mqtt.Message.
type Message struct {
	topic    string
	payload  []byte
	retained bool
}

func (m *Message) Duplicate() bool   { return false }
func (m *Message) Qos() byte         { return 0 }
func (m *Message) Retained() bool    { return m.retained }
func (m *Message) Topic() string     { return m.topic }
func (m *Message) MessageID() uint16 { return 0 }
func (m *Message) Payload() []byte   { return m.payload }
func (m *Message) Ack()              {}
