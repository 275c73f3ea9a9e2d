// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/run_tracker/internal/panel"
)

// MQTTSink publishes each screen as retained JSON so late subscribers
// see the current state straight away.
type MQTTSink struct {
	client mqtt.Client
	topic  string
}

func NewMQTTSink(client mqtt.Client, topic string) *MQTTSink {
	return &MQTTSink{client: client, topic: topic}
}

func (m *MQTTSink) Show(s panel.Screen) error {
	// one-shot fields must not stick in the retained message
	s.Notice = ""
	s.Help = ""

	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("mqtt sink: marshal: %w", err)
	}

	token := m.client.Publish(m.topic, 0, true, payload)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("mqtt sink: publish %s: %w", m.topic, token.Error())
	}
	return nil
}

// SubscribeCommands forwards JSON commands from topic to submit.
func SubscribeCommands(client mqtt.Client, topic string, submit func(panel.Command)) error {
	token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var cmd panel.Command
		if err := json.Unmarshal(msg.Payload(), &cmd); err != nil {
			log.Printf("commands: unmarshal error: %v", err)
			return
		}
		if cmd.Action == "" {
			log.Printf("commands: missing action in %q", msg.Payload())
			return
		}
		submit(cmd)
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("commands: subscribed to %s", topic)
	return nil
}
