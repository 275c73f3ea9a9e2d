package main

import (
	"log"

	"github.com/relabs-tech/run_tracker/internal/app"
	"github.com/relabs-tech/run_tracker/internal/config"
)

func main() {
	log.Println("starting run-tracker console (MQTT subscriber)")

	// Load configuration
	if err := config.InitGlobal("run_tracker_config.txt"); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunConsoleMQTT(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
