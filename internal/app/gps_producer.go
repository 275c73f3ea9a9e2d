package app

import (
	"bufio"
	"encoding/json"
	"errors"
	"log"

	serial "github.com/jacobsa/go-serial/serial"

	"github.com/relabs-tech/run_tracker/internal/config"
	"github.com/relabs-tech/run_tracker/internal/gps"
)

// RunGPSProducer opens the GPS serial port, parses NMEA sentences, and
// publishes every RMC fix as JSON to TOPIC_GPS for trackers running with
// GPS_SOURCE=mqtt.
func RunGPSProducer() error {
	cfg := config.Get()
	if cfg == nil {
		return errors.New("config not initialized")
	}

	// ---- 1) Connect to MQTT broker ----
	client, err := connectMQTT(cfg, cfg.MQTTClientIDGPS)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	// ---- 2) Open GPS serial port ----
	serialOpts := gps.SerialOptions(cfg.GPSSerialPort, cfg.GPSBaudRate)
	port, err := serial.Open(serialOpts)
	if err != nil {
		return err
	}
	defer port.Close()
	log.Printf("GPS serial port opened on %s at %d baud", serialOpts.PortName, serialOpts.BaudRate)

	reader := bufio.NewReader(port)

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			log.Printf("GPS read error: %v", err)
			return err
		}

		fix, ok, err := gps.ParseRMC(line)
		if err != nil || !ok {
			// noisy GPS, partial sentences and non-RMC types
			continue
		}

		payload, err := json.Marshal(fix)
		if err != nil {
			log.Printf("GPS JSON marshal error: %v", err)
			continue
		}

		token := client.Publish(cfg.TopicGPS, 0, true, payload)
		token.Wait()
		if token.Error() != nil {
			log.Printf("GPS publish error: %v", token.Error())
			continue
		}

		log.Printf("published GPS fix: %+v", fix)
	}
}
