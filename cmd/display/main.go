package main

import (
	"log"

	"github.com/relabs-tech/imu_computer/internal/app"
	"github.com/relabs-tech/imu_computer/internal/config"
)

func main() {
	log.Println("starting imu-computer display (MQTT subscriber)")

	// Load configuration
	if err := config.InitGlobal("imu_config.txt"); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunDisplay(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
