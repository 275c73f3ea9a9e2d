// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/run_tracker/internal/config"
	"github.com/relabs-tech/run_tracker/internal/gps"
	"github.com/relabs-tech/run_tracker/internal/timer"
	"github.com/relabs-tech/run_tracker/internal/tracker"
)

// connectMQTT connects a client with the given ID to the configured broker.
func connectMQTT(cfg *config.Config, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(clientID).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	log.Printf("connected to MQTT broker at %s as %s", cfg.MQTTBroker, clientID)
	return client, nil
}

// newProvider picks the location source named by GPS_SOURCE.
func newProvider(cfg *config.Config, client mqtt.Client) (tracker.LocationProvider, error) {
	switch cfg.GPSSource {
	case config.GPSSourceSerial:
		return gps.NewSerialProvider(cfg.GPSSerialPort, cfg.GPSBaudRate), nil
	case config.GPSSourceMQTT:
		if client == nil {
			return nil, errors.New("GPS_SOURCE=mqtt needs an MQTT connection")
		}
		return gps.NewMQTTProvider(client, cfg.TopicGPS), nil
	case config.GPSSourceMock:
		interval := cfg.MinInterval()
		if interval <= 0 {
			interval = tracker.DefaultMinInterval
		}
		return gps.NewMockProvider(interval), nil
	default:
		return nil, fmt.Errorf("unknown GPS source %q", cfg.GPSSource)
	}
}

// RunTracker runs the tracker loop with every configured output until
// SIGINT/SIGTERM. The MQTT broker is optional unless GPS_SOURCE=mqtt.
func RunTracker() error {
	cfg := config.Get()
	if cfg == nil {
		return errors.New("config not initialized")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := connectMQTT(cfg, cfg.MQTTClientIDTracker)
	if err != nil {
		if cfg.GPSSource == config.GPSSourceMQTT {
			return fmt.Errorf("mqtt connect: %w", err)
		}
		log.Printf("tracker: running without MQTT: %v", err)
		client = nil
	} else {
		defer client.Disconnect(250)
	}

	provider, err := newProvider(cfg, client)
	if err != nil {
		return err
	}

	loop := NewLoop(provider, timer.SystemClock, tracker.Modes{
		UseMPH:  cfg.UseMPH,
		DevMode: cfg.DevMode,
	}, cfg.Tick())
	loop.SetSubscribeOptions(tracker.SubscribeOptions{
		MinInterval: cfg.MinInterval(),
		MinDistance: cfg.LocationMinDistance,
	})

	if client != nil {
		loop.AddSink(NewMQTTSink(client, cfg.TopicTrackerState))
		if err := SubscribeCommands(client, cfg.TopicTrackerCommands, loop.Submit); err != nil {
			log.Printf("tracker: command topic unavailable: %v", err)
		}
	}

	if cfg.DisplayEnabled {
		oled, err := OpenOLED(cfg.DisplayI2CBus)
		if err != nil {
			log.Printf("display: disabled: %v", err)
		} else {
			defer oled.Close()
			loop.AddSink(oled)
		}
	}

	hub := NewHub(loop.Submit)
	loop.AddSink(hub)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.WebServerPort),
		Handler:           NewWebHandler(hub, "web"),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Printf("web server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("web: server error: %v", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	return loop.Run(ctx)
}
